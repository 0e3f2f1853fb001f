// Package interfaces defines service contracts for SmartFolio
package interfaces

import (
	"context"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// FMPClient provides access to the Financial Modeling Prep API
type FMPClient interface {
	// GetProfile retrieves the company profile for a ticker
	GetProfile(ctx context.Context, ticker string) (*models.TickerProfile, error)

	// GetEarningsCalendar retrieves earnings events between from and to
	GetEarningsCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEvent, error)

	// GetAnalystEstimates retrieves quarterly EPS estimates, nearest first
	GetAnalystEstimates(ctx context.Context, ticker string, limit int) ([]models.EPSEstimate, error)

	// GetCashFlowStatement retrieves the latest annual cash flow statement
	GetCashFlowStatement(ctx context.Context, ticker string) (*models.CashFlowStatement, error)

	// GetNews retrieves recent news for a ticker
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// QuoteClient provides current price data per ticker
type QuoteClient interface {
	// GetQuote retrieves last price, previous close, day change and market cap
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)
}

// NewsAnalyzer summarizes a batch of news texts into a structured impact
// assessment. Implementations degrade to a low-impact default instead of
// failing; the returned error is for logging only and the analysis is
// always usable.
type NewsAnalyzer interface {
	AnalyzeNewsImpact(ctx context.Context, texts []string) (*models.NewsAnalysis, error)
}

// Notifier delivers a preformatted text report to the notification sink.
// Delivery failure is logged by callers, never retried or surfaced to users.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
