package models

import "time"

// TickerProfile is the provider's reference record for a ticker. A profile
// lookup is the sole gate for onboarding a new ticker: transactions and
// watchlist entries are rejected when it fails.
type TickerProfile struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
}

// Quote holds current price data for a ticker.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	DayChangePct  float64 `json:"day_change_pct"`
	MarketCap     float64 `json:"market_cap"`
}

// EPSEstimate is one quarterly analyst EPS estimate.
type EPSEstimate struct {
	Date            string  `json:"date"`
	EstimatedEPSAvg float64 `json:"estimated_eps_avg"`
}

// CashFlowStatement holds the fields FCF-per-share derivation needs from
// the latest annual statement.
type CashFlowStatement struct {
	OperatingCashFlow  float64 `json:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure"`
	DilutedShares      float64 `json:"diluted_shares"`
}

// EarningsEvent is one upcoming earnings report.
type EarningsEvent struct {
	Ticker          string   `json:"ticker"`
	Date            string   `json:"date"` // YYYY-MM-DD as reported by the calendar
	EPSEstimate     *float64 `json:"eps_estimate,omitempty"`
	RevenueEstimate *float64 `json:"revenue_estimate,omitempty"`
}

// NewsItem is one news article for a ticker.
type NewsItem struct {
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Asset is the persisted reference record for a known ticker. It doubles as
// a slow-changing cache and as the historical baseline the alert scanner
// compares against. Created on first transaction or watchlist add; refreshed
// by the daily sync.
type Asset struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector"`
	Description string    `json:"description"`
	LastPrice   float64   `json:"last_price"`
	PENTM       *float64  `json:"pe_ntm,omitempty"`
	FCFShare    *float64  `json:"fcf_share,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// WatchlistItem is a ticker tracked without a holding.
type WatchlistItem struct {
	Ticker  string    `json:"ticker"`
	Name    string    `json:"name,omitempty"`
	Sector  string    `json:"sector,omitempty"`
	AddedAt time.Time `json:"added_at"`
}
