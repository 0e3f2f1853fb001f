// Package portfolio owns the transaction log and everything derived from it
package portfolio

import (
	"sort"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// AggregatePositions folds the transaction log into net positions per
// ticker. Positions are recomputed from the full log on every call rather
// than persisted, so they cannot drift from the log. Share and amount
// deltas are signed, which keeps the grouping valid if sell transactions
// start appearing in the log.
func AggregatePositions(transactions []models.Transaction) []models.Position {
	type bucket struct {
		shares float64
		cost   float64
	}

	buckets := make(map[string]*bucket)
	for _, tx := range transactions {
		ticker := models.NormalizeTicker(tx.Ticker)
		b, ok := buckets[ticker]
		if !ok {
			b = &bucket{}
			buckets[ticker] = b
		}
		b.shares += tx.SignedShares()
		b.cost += tx.SignedAmount()
	}

	positions := make([]models.Position, 0, len(buckets))
	for ticker, b := range buckets {
		// closed or over-closed positions do not appear as holdings
		if b.shares <= 0 {
			continue
		}
		positions = append(positions, models.Position{
			Ticker:    ticker,
			NetShares: b.shares,
			TotalCost: b.cost,
			AvgCost:   b.cost / b.shares,
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})

	return positions
}
