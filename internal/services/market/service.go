// Package market composes the provider clients into derived market fields
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// estimateQuarters is how many quarterly EPS estimates sum into the
// next-twelve-months figure. A couple extra are fetched so stale leading
// rows from the provider do not starve the window.
const (
	estimateQuarters = 4
	estimateFetch    = 6
)

// Service derives market fields from the FMP and quote clients. Optional
// derivations return nil instead of an error so a partial provider outage
// degrades rows instead of failing requests.
type Service struct {
	fmp    interfaces.FMPClient
	quotes interfaces.QuoteClient
	logger *common.Logger
}

// NewService creates a new market data service
func NewService(fmp interfaces.FMPClient, quotes interfaces.QuoteClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		fmp:    fmp,
		quotes: quotes,
		logger: logger,
	}
}

// GetQuote returns the full current quote for a ticker
func (s *Service) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	return s.quotes.GetQuote(ctx, ticker)
}

// GetPrice returns the current price, or 0 when the lookup fails. Callers
// that must distinguish failure from a zero price use GetQuote.
func (s *Service) GetPrice(ctx context.Context, ticker string) float64 {
	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price lookup failed")
		return 0
	}
	return quote.Price
}

// GetPENTM derives the next-twelve-months P/E: current price divided by the
// sum of the next four quarterly EPS estimates. Nil when the price or the
// estimates are unavailable, or the estimate sum is not positive.
func (s *Service) GetPENTM(ctx context.Context, ticker string) *float64 {
	price := s.GetPrice(ctx, ticker)
	if price <= 0 {
		return nil
	}

	estimates, err := s.fmp.GetAnalystEstimates(ctx, ticker, estimateFetch)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Analyst estimates lookup failed")
		return nil
	}

	quarters := estimates
	if len(quarters) > estimateQuarters {
		quarters = quarters[:estimateQuarters]
	}

	var epsSum float64
	for _, e := range quarters {
		epsSum += e.EstimatedEPSAvg
	}
	if epsSum <= 0 {
		return nil
	}

	pe := common.Round2(price / epsSum)
	return &pe
}

// GetFCFPerShare derives free cash flow per share from the latest annual
// statement: (operating cash flow minus the absolute capital expenditure)
// over diluted shares. Nil when the statement is unavailable or the share
// count is not positive.
func (s *Service) GetFCFPerShare(ctx context.Context, ticker string) *float64 {
	stmt, err := s.fmp.GetCashFlowStatement(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Cash flow lookup failed")
		return nil
	}
	if stmt.DilutedShares <= 0 {
		return nil
	}

	capex := stmt.CapitalExpenditure
	if capex < 0 {
		capex = -capex
	}

	fcf := common.Round2((stmt.OperatingCashFlow - capex) / stmt.DilutedShares)
	return &fcf
}

// GetDailyChange returns the percent change versus the previous close. Nil
// when the quote fails or the previous close is zero.
func (s *Service) GetDailyChange(ctx context.Context, ticker string) *float64 {
	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote lookup failed")
		return nil
	}
	if quote.PreviousClose == 0 {
		return nil
	}

	change := common.Round2((quote.Price - quote.PreviousClose) / quote.PreviousClose * 100)
	return &change
}

// GetEarnings returns upcoming earnings events for the given tickers within
// the next windowDays days
func (s *Service) GetEarnings(ctx context.Context, tickers []string, windowDays int) ([]models.EarningsEvent, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	now := time.Now()
	events, err := s.fmp.GetEarningsCalendar(ctx, now, now.AddDate(0, 0, windowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earnings calendar: %w", err)
	}

	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[models.NormalizeTicker(t)] = true
	}

	var matched []models.EarningsEvent
	for _, e := range events {
		if wanted[models.NormalizeTicker(e.Ticker)] {
			matched = append(matched, e)
		}
	}

	return matched, nil
}

// ValidateTicker resolves the provider profile for a ticker. An error means
// the ticker is unknown and must not be onboarded.
func (s *Service) ValidateTicker(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	profile, err := s.fmp.GetProfile(ctx, models.NormalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("ticker %s could not be validated: %w", ticker, err)
	}
	return profile, nil
}

// GetNews returns recent news for a ticker
func (s *Service) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return s.fmp.GetNews(ctx, ticker, limit)
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
