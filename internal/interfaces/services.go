package interfaces

import (
	"context"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// MarketDataService composes the provider clients into the derived market
// fields the rest of the system consumes. Derivations that cannot be
// computed return nil rather than an error so callers can render partial
// rows.
type MarketDataService interface {
	// GetPrice returns the current price, or 0 when the lookup fails.
	GetPrice(ctx context.Context, ticker string) float64

	// GetQuote returns the full current quote.
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetPENTM derives the next-twelve-months P/E from quarterly analyst
	// estimates. Nil when price or estimates are unavailable or the
	// estimate sum is not positive.
	GetPENTM(ctx context.Context, ticker string) *float64

	// GetFCFPerShare derives free cash flow per share from the latest
	// annual cash flow statement. Nil when the statement is unavailable
	// or the share count is not positive.
	GetFCFPerShare(ctx context.Context, ticker string) *float64

	// GetDailyChange returns the percent change versus the previous close.
	// Nil when the quote fails or the previous close is zero.
	GetDailyChange(ctx context.Context, ticker string) *float64

	// GetEarnings returns upcoming earnings events for the given tickers
	// within the next windowDays days.
	GetEarnings(ctx context.Context, tickers []string, windowDays int) ([]models.EarningsEvent, error)

	// ValidateTicker resolves the provider profile for a ticker. An error
	// means the ticker is unknown and must not be onboarded.
	ValidateTicker(ctx context.Context, ticker string) (*models.TickerProfile, error)

	// GetNews returns recent news for a ticker.
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// PortfolioService owns the transaction log and everything derived from it.
type PortfolioService interface {
	// GetDashboard assembles valuation, daily performance and period return.
	GetDashboard(ctx context.Context) (*models.Dashboard, error)

	// GetHoldings returns the valued holdings table.
	GetHoldings(ctx context.Context) (*models.PortfolioValuation, error)

	// AddTransaction validates and appends a transaction, registering the
	// ticker as an asset on first sight.
	AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// ListTransactions returns the full log ordered by trade date.
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	// ActiveTickers returns the distinct tickers present in the log.
	ActiveTickers(ctx context.Context) ([]string, error)

	// RenderAllocationChart renders the current allocation as a PNG.
	RenderAllocationChart(ctx context.Context) ([]byte, error)
}

// WatchlistService tracks tickers without holdings.
type WatchlistService interface {
	List(ctx context.Context) ([]models.WatchlistItem, error)
	Add(ctx context.Context, ticker string) (*models.WatchlistItem, error)
	Remove(ctx context.Context, ticker string) error
}

// AlertService runs the daily scanner pass and the full sync pipeline.
type AlertService interface {
	// Scan runs all scanners over the given tickers and returns the alerts
	// found. Per-ticker provider failures are logged and skipped.
	Scan(ctx context.Context, tickers []string) ([]models.Alert, []models.ReportSection, error)

	// RunDailySync executes the full pipeline: collect tickers, scan,
	// refresh the asset cache, assemble and deliver the report.
	RunDailySync(ctx context.Context) (*models.SyncReport, error)
}
