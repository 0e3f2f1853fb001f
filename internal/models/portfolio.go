package models

import "time"

// Position is a ticker's current net holding derived from the transaction
// log. Recomputed from the full log on every refresh and never persisted,
// so it cannot drift from the log.
type Position struct {
	Ticker    string  `json:"ticker"`
	NetShares float64 `json:"net_shares"`
	TotalCost float64 `json:"total_cost"`
	AvgCost   float64 `json:"avg_cost"` // total_cost / net_shares, 0 when net_shares <= 0
}

// Holding is a Position enriched with live market fields. Optional
// fundamentals are nil when the provider could not supply them.
type Holding struct {
	Ticker       string   `json:"ticker"`
	Name         string   `json:"name,omitempty"`
	Sector       string   `json:"sector,omitempty"`
	Shares       float64  `json:"shares"`
	AvgCost      float64  `json:"avg_cost"`
	CurrentPrice float64  `json:"current_price"`
	MarketValue  float64  `json:"market_value"`
	PnlPct       float64  `json:"pnl_pct"`
	PENTM        *float64 `json:"pe_ntm,omitempty"`
	FCFPerShare  *float64 `json:"fcf_per_share,omitempty"`
}

// PortfolioValuation is the full valuation output: per-holding rows plus
// portfolio totals. All monetary fields are rounded to cents.
type PortfolioValuation struct {
	Holdings    []Holding `json:"holdings"`
	TotalValue  float64   `json:"total_value"`
	TotalCost   float64   `json:"total_cost"`
	TotalPnlPct float64   `json:"total_pnl_pct"`
	AsOf        time.Time `json:"as_of"`
}

// DailyPerformance compares current prices against the previous close
// instead of cost basis. It backs the dashboard's day-change KPI.
type DailyPerformance struct {
	ChangeValue float64 `json:"change_value"`
	ChangePct   float64 `json:"change_pct"`
}

// Dashboard bundles the KPIs the UI renders on load.
type Dashboard struct {
	Valuation PortfolioValuation `json:"valuation"`
	Daily     DailyPerformance   `json:"daily"`
	ReturnPct float64            `json:"return_pct"` // period return, see portfolio.ComputePortfolioReturn
}
