// Package alerts runs the daily scanner pass and sync pipeline
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// newsFetchLimit is how many recent articles feed one impact analysis.
const newsFetchLimit = 5

// Service implements the AlertService interface. The analyzer and notifier
// are optional: a nil analyzer downgrades news scanning to the low-impact
// default, a nil notifier skips delivery with a log line.
type Service struct {
	portfolio interfaces.PortfolioService
	storage   interfaces.StorageManager
	market    interfaces.MarketDataService
	analyzer  interfaces.NewsAnalyzer
	notifier  interfaces.Notifier
	cfg       common.ScannerConfig
	logger    *common.Logger
}

// NewService creates a new alert service
func NewService(
	portfolio interfaces.PortfolioService,
	storage interfaces.StorageManager,
	market interfaces.MarketDataService,
	analyzer interfaces.NewsAnalyzer,
	notifier interfaces.Notifier,
	cfg common.ScannerConfig,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		portfolio: portfolio,
		storage:   storage,
		market:    market,
		analyzer:  analyzer,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Scan runs all scanners over the given tickers. One ticker's provider
// failure is logged and skipped, never aborting the batch.
func (s *Service) Scan(ctx context.Context, tickers []string) ([]models.Alert, []models.ReportSection, error) {
	var alerts []models.Alert
	var sections []models.ReportSection

	appendSection := func(title string, found []models.Alert) {
		if len(found) == 0 {
			return
		}
		section := models.ReportSection{Title: title}
		for _, a := range found {
			section.Lines = append(section.Lines, a.Message)
		}
		alerts = append(alerts, found...)
		sections = append(sections, section)
	}

	appendSection("Upcoming Earnings", s.scanEarnings(ctx, tickers))
	appendSection("Price Moves", s.scanPriceShocks(ctx, tickers))
	appendSection("Valuation Drops", s.scanValuationDrops(ctx, tickers))
	appendSection("News", s.scanNews(ctx, tickers))

	return alerts, sections, nil
}

// scanEarnings flags tickers reporting within the configured horizon
func (s *Service) scanEarnings(ctx context.Context, tickers []string) []models.Alert {
	events, err := s.market.GetEarnings(ctx, tickers, s.cfg.EarningsHorizonDays)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Earnings scan failed")
		return nil
	}

	var alerts []models.Alert
	for _, e := range events {
		msg := fmt.Sprintf("%s reports earnings on %s", e.Ticker, e.Date)
		if e.EPSEstimate != nil {
			msg += fmt.Sprintf(" (est. EPS %.2f)", *e.EPSEstimate)
		}
		alerts = append(alerts, models.Alert{
			Type:    models.AlertTypeEarnings,
			Ticker:  models.NormalizeTicker(e.Ticker),
			Message: msg,
		})
	}

	return alerts
}

// scanPriceShocks flags day moves at or beyond the configured threshold
func (s *Service) scanPriceShocks(ctx context.Context, tickers []string) []models.Alert {
	var alerts []models.Alert
	for _, ticker := range tickers {
		change := s.market.GetDailyChange(ctx, ticker)
		if change == nil {
			s.logger.Warn().Str("ticker", ticker).Msg("Price scan skipped ticker")
			continue
		}
		pct := *change
		if pct >= s.cfg.PriceShockPct || pct <= -s.cfg.PriceShockPct {
			direction := "up"
			if pct < 0 {
				direction = "down"
			}
			alerts = append(alerts, models.Alert{
				Type:    models.AlertTypePrice,
				Ticker:  ticker,
				Message: fmt.Sprintf("%s moved %s %.2f%% today", ticker, direction, abs(pct)),
			})
		}
	}
	return alerts
}

// scanValuationDrops compares the current forward P/E against the stored
// baseline and flags re-ratings below the configured ratio. Runs before the
// asset refresh so the baseline still reflects the previous sync.
func (s *Service) scanValuationDrops(ctx context.Context, tickers []string) []models.Alert {
	var alerts []models.Alert
	for _, ticker := range tickers {
		asset, err := s.storage.Assets().Get(ctx, ticker)
		if err != nil || asset.PENTM == nil || *asset.PENTM <= 0 {
			continue
		}
		baseline := *asset.PENTM

		current := s.market.GetPENTM(ctx, ticker)
		if current == nil || *current <= 0 {
			s.logger.Warn().Str("ticker", ticker).Msg("Valuation scan skipped ticker")
			continue
		}

		ratio := *current / baseline
		if ratio < s.cfg.ValuationDropRatio {
			dropPct := common.Round1((1 - ratio) * 100)
			alerts = append(alerts, models.Alert{
				Type:    models.AlertTypeValuation,
				Ticker:  ticker,
				Message: fmt.Sprintf("%s forward P/E dropped %.1f%% (%.1f -> %.1f)", ticker, dropPct, baseline, *current),
			})
		}
	}
	return alerts
}

// scanNews summarizes recent news per ticker and flags high or medium
// expected impact
func (s *Service) scanNews(ctx context.Context, tickers []string) []models.Alert {
	var alerts []models.Alert
	for _, ticker := range tickers {
		news, err := s.market.GetNews(ctx, ticker, newsFetchLimit)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News scan skipped ticker")
			continue
		}
		// No published news still gets a minimal line so the analyzer can
		// surface broader market context for the ticker.
		texts := []string{ticker + " market update."}
		if len(news) > 0 {
			texts = make([]string, len(news))
			for i, item := range news {
				texts[i] = item.Title + ". " + item.Text
			}
		}

		analysis := s.analyzeNews(ctx, ticker, texts)
		if analysis.ImpactLevel != models.ImpactHigh && analysis.ImpactLevel != models.ImpactMed {
			continue
		}

		alerts = append(alerts, models.Alert{
			Type:    models.AlertTypeNews,
			Ticker:  ticker,
			Message: fmt.Sprintf("%s [%s impact]: %s", ticker, analysis.ImpactLevel, analysis.Summary),
		})
	}
	return alerts
}

func (s *Service) analyzeNews(ctx context.Context, ticker string, texts []string) *models.NewsAnalysis {
	if s.analyzer == nil {
		return models.DefaultNewsAnalysis("News analysis not configured.")
	}

	analysis, err := s.analyzer.AnalyzeNewsImpact(ctx, texts)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News analysis degraded")
	}
	return analysis
}

// RefreshAssets re-derives price and fundamentals for each ticker and
// rewrites the asset cache, which becomes the next scan's baseline.
// Returns how many assets were updated.
func (s *Service) RefreshAssets(ctx context.Context, tickers []string) int {
	updated := 0
	for _, ticker := range tickers {
		asset, err := s.storage.Assets().Get(ctx, ticker)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Asset refresh skipped unknown ticker")
			continue
		}

		asset.LastPrice = s.market.GetPrice(ctx, ticker)
		asset.PENTM = s.market.GetPENTM(ctx, ticker)
		asset.FCFShare = s.market.GetFCFPerShare(ctx, ticker)
		asset.LastUpdated = time.Now()

		if err := s.storage.Assets().Upsert(ctx, asset); err != nil {
			s.logger.Error().Err(err).Str("ticker", ticker).Msg("Asset refresh write failed")
			continue
		}
		updated++
	}
	return updated
}

// RunDailySync executes the full pipeline: collect tickers from the
// transaction log, scan against the previous baselines, refresh the asset
// cache, then assemble and deliver the report. Delivery failure is logged,
// never returned, so the refreshed state survives a notification outage.
func (s *Service) RunDailySync(ctx context.Context) (*models.SyncReport, error) {
	started := time.Now()

	tickers, err := s.portfolio.ActiveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect tickers: %w", err)
	}

	report := &models.SyncReport{
		GeneratedAt: started,
		Tickers:     tickers,
	}

	if len(tickers) == 0 {
		s.logger.Info().Msg("Daily sync: no tickers to scan")
		s.deliver(ctx, report)
		return report, nil
	}

	alerts, sections, err := s.Scan(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	report.Alerts = alerts
	report.Sections = sections

	report.AssetsUpdated = s.RefreshAssets(ctx, tickers)

	s.logger.Info().
		Int("tickers", len(tickers)).
		Int("alerts", len(alerts)).
		Int("assets_updated", report.AssetsUpdated).
		Dur("elapsed", time.Since(started)).
		Msg("Daily sync complete")

	s.deliver(ctx, report)

	return report, nil
}

func (s *Service) deliver(ctx context.Context, report *models.SyncReport) {
	if s.notifier == nil {
		s.logger.Info().Msg("Notifier not configured, skipping delivery")
		return
	}
	if err := s.notifier.Send(ctx, report.Format()); err != nil {
		s.logger.Error().Err(err).Msg("Report delivery failed")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Ensure Service implements AlertService
var _ interfaces.AlertService = (*Service)(nil)
