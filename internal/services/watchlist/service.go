// Package watchlist tracks tickers without holdings
package watchlist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// Service implements the WatchlistService interface
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataService
	logger  *common.Logger
}

// NewService creates a new watchlist service
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

// List returns the watchlist sorted by ticker
func (s *Service) List(ctx context.Context) ([]models.WatchlistItem, error) {
	items, err := s.storage.Watchlist().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Ticker < items[j].Ticker
	})

	return items, nil
}

// Add validates the ticker against the provider and puts it on the
// watchlist. Re-adding an existing ticker is a no-op upsert.
func (s *Service) Add(ctx context.Context, ticker string) (*models.WatchlistItem, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, models.NewValidationError("ticker is required")
	}

	profile, err := s.market.ValidateTicker(ctx, ticker)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("unknown ticker %s", ticker))
	}

	item := &models.WatchlistItem{
		Ticker:  ticker,
		Name:    profile.Name,
		Sector:  profile.Sector,
		AddedAt: time.Now(),
	}

	if err := s.ensureAsset(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to register asset: %w", err)
	}

	if err := s.storage.Watchlist().Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store watchlist item: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Watchlist add")

	return item, nil
}

// Remove takes a ticker off the watchlist. Removing an absent ticker is
// not an error.
func (s *Service) Remove(ctx context.Context, ticker string) error {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return models.NewValidationError("ticker is required")
	}

	if err := s.storage.Watchlist().Delete(ctx, ticker); err != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Watchlist remove")

	return nil
}

// ensureAsset creates the asset record on first sight of a ticker so the
// daily sync covers watched tickers too.
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

// Ensure Service implements WatchlistService
var _ interfaces.WatchlistService = (*Service)(nil)
