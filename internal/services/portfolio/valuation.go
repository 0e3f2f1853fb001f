package portfolio

import (
	"context"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// assetLookup resolves cached reference data for a ticker. Missing assets
// degrade to empty name and sector, never an error.
type assetLookup func(ticker string) *models.Asset

// Value combines positions with live market data into a full valuation.
// Provider failures for one ticker degrade that row to price 0 and absent
// fundamentals; the rest of the batch values normally.
func Value(ctx context.Context, positions []models.Position, market interfaces.MarketDataService, lookup assetLookup) *models.PortfolioValuation {
	holdings := make([]models.Holding, 0, len(positions))
	var totalValue, totalCost float64

	for _, pos := range positions {
		price := market.GetPrice(ctx, pos.Ticker)
		marketValue := common.Round2(pos.NetShares * price)

		var pnlPct float64
		if pos.TotalCost > 0 && price > 0 {
			pnlPct = common.Round2((marketValue - pos.TotalCost) / pos.TotalCost * 100)
		}

		h := models.Holding{
			Ticker:       pos.Ticker,
			Shares:       pos.NetShares,
			AvgCost:      common.Round2(pos.AvgCost),
			CurrentPrice: price,
			MarketValue:  marketValue,
			PnlPct:       pnlPct,
		}

		if lookup != nil {
			if asset := lookup(pos.Ticker); asset != nil {
				h.Name = asset.Name
				h.Sector = asset.Sector
				h.PENTM = asset.PENTM
				h.FCFPerShare = asset.FCFShare
			}
		}

		holdings = append(holdings, h)
		totalValue += marketValue
		totalCost += pos.TotalCost
	}

	var totalPnlPct float64
	if totalCost > 0 {
		totalPnlPct = common.Round2((totalValue - totalCost) / totalCost * 100)
	}

	return &models.PortfolioValuation{
		Holdings:    holdings,
		TotalValue:  common.Round2(totalValue),
		TotalCost:   common.Round2(totalCost),
		TotalPnlPct: totalPnlPct,
		AsOf:        time.Now(),
	}
}

// DailyChange compares current prices against the previous close instead of
// cost basis. Tickers whose quote fails contribute nothing to the figure.
func DailyChange(ctx context.Context, positions []models.Position, market interfaces.MarketDataService) *models.DailyPerformance {
	var current, previous float64

	for _, pos := range positions {
		quote, err := market.GetQuote(ctx, pos.Ticker)
		if err != nil || quote.PreviousClose == 0 {
			continue
		}
		current += pos.NetShares * quote.Price
		previous += pos.NetShares * quote.PreviousClose
	}

	perf := &models.DailyPerformance{}
	if previous > 0 {
		perf.ChangeValue = common.Round2(current - previous)
		perf.ChangePct = common.Round2((current - previous) / previous * 100)
	}

	return perf
}
