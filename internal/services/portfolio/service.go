package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// Service implements the PortfolioService interface
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataService
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataService, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// GetHoldings returns the valued holdings table
func (s *Service) GetHoldings(ctx context.Context) (*models.PortfolioValuation, error) {
	transactions, err := s.storage.Transactions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	positions := AggregatePositions(transactions)
	return Value(ctx, positions, s.market, s.assetLookup(ctx)), nil
}

// GetDashboard assembles valuation, daily performance and period return
func (s *Service) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	transactions, err := s.storage.Transactions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	positions := AggregatePositions(transactions)
	valuation := Value(ctx, positions, s.market, s.assetLookup(ctx))
	daily := DailyChange(ctx, positions, s.market)

	return &models.Dashboard{
		Valuation: *valuation,
		Daily:     *daily,
		ReturnPct: ComputePortfolioReturn(transactions, valuation.TotalValue),
	}, nil
}

// AddTransaction validates and appends a transaction. The ticker must
// resolve to a provider profile before the write is accepted; first-seen
// tickers are registered as assets so the daily sync picks them up.
func (s *Service) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	tx.Ticker = models.NormalizeTicker(tx.Ticker)

	if tx.Ticker == "" {
		return nil, models.NewValidationError("ticker is required")
	}
	// Only BUY records are accepted. SELL stays schema-permitted for the
	// aggregator's signed deltas but has no write path.
	if tx.Type != models.TransactionBuy {
		return nil, models.NewValidationError(fmt.Sprintf("invalid transaction type %q", tx.Type))
	}
	if tx.Shares <= 0 {
		return nil, models.NewValidationError("shares must be positive")
	}
	if tx.Price <= 0 {
		return nil, models.NewValidationError("price must be positive")
	}
	if tx.Date.IsZero() {
		return nil, models.NewValidationError("date is required")
	}

	profile, err := s.market.ValidateTicker(ctx, tx.Ticker)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("unknown ticker %s", tx.Ticker))
	}

	tx.ID = uuid.New().String()
	tx.Amount = common.Round2(tx.Shares * tx.Price)
	tx.CreatedAt = time.Now()

	if err := s.ensureAsset(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to register asset: %w", err)
	}

	if err := s.storage.Transactions().Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	s.logger.Info().
		Str("ticker", tx.Ticker).
		Str("type", string(tx.Type)).
		Float64("shares", tx.Shares).
		Float64("price", tx.Price).
		Msg("Transaction recorded")

	return tx, nil
}

// ListTransactions returns the full log ordered by trade date
func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.storage.Transactions().List(ctx)
}

// ActiveTickers returns the distinct tickers present in the log, sorted
func (s *Service) ActiveTickers(ctx context.Context) ([]string, error) {
	transactions, err := s.storage.Transactions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, tx := range transactions {
		ticker := models.NormalizeTicker(tx.Ticker)
		if !seen[ticker] {
			seen[ticker] = true
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	return tickers, nil
}

// RenderAllocationChart renders the current allocation as a PNG
func (s *Service) RenderAllocationChart(ctx context.Context) ([]byte, error) {
	valuation, err := s.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	return RenderAllocationChart(valuation)
}

// ensureAsset creates the asset record on first sight of a ticker. An
// existing record is left untouched so the scanner baseline survives.
func (s *Service) ensureAsset(ctx context.Context, profile *models.TickerProfile) error {
	ticker := models.NormalizeTicker(profile.Ticker)

	if _, err := s.storage.Assets().Get(ctx, ticker); err == nil {
		return nil
	}

	now := time.Now()
	asset := &models.Asset{
		Ticker:      ticker,
		Name:        profile.Name,
		Sector:      profile.Sector,
		Description: profile.Description,
		LastPrice:   s.market.GetPrice(ctx, ticker),
		LastUpdated: now,
		CreatedAt:   now,
	}

	return s.storage.Assets().Upsert(ctx, asset)
}

// assetLookup preloads the asset cache for valuation enrichment. A load
// failure degrades to bare rows rather than failing the valuation.
func (s *Service) assetLookup(ctx context.Context) assetLookup {
	assets, err := s.storage.Assets().List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Asset cache load failed")
		return nil
	}

	byTicker := make(map[string]*models.Asset, len(assets))
	for i := range assets {
		byTicker[models.NormalizeTicker(assets[i].Ticker)] = &assets[i]
	}

	return func(ticker string) *models.Asset {
		return byTicker[models.NormalizeTicker(ticker)]
	}
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
