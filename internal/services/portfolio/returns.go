package portfolio

import (
	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// ComputePortfolioReturn computes the portfolio period return as a simple
// money-weighted return: (current_value - total_invested) / total_invested.
//
// This is a deliberate approximation, not true time-weighted return. True
// TWR chains sub-period returns between external cash flows, which needs a
// daily NAV history this system does not retain. Switching to real TWR
// means persisting daily valuation snapshots first; until then this
// formula stays as is so the dashboard figure is stable across versions.
func ComputePortfolioReturn(transactions []models.Transaction, currentValue float64) float64 {
	var invested float64
	for _, tx := range transactions {
		invested += tx.SignedAmount()
	}
	if invested <= 0 {
		return 0
	}
	return common.Round2((currentValue - invested) / invested * 100)
}
