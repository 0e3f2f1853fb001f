package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

// AssetStore persists the per-ticker reference records, one record per
// ticker.
type AssetStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAssetStore(db *surrealdb.DB, logger *common.Logger) *AssetStore {
	return &AssetStore{
		db:     db,
		logger: logger,
	}
}

// Get returns the asset for a ticker, or models.ErrNotFound.
func (s *AssetStore) Get(ctx context.Context, ticker string) (*models.Asset, error) {
	asset, err := surrealdb.Select[models.Asset](ctx, s.db, surrealmodels.NewRecordID("assets", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select asset: %w", err)
	}
	if asset == nil || asset.Ticker == "" {
		return nil, fmt.Errorf("asset %s: %w", ticker, models.ErrNotFound)
	}
	return asset, nil
}

// Upsert creates or replaces the asset record for its ticker.
func (s *AssetStore) Upsert(ctx context.Context, asset *models.Asset) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("assets", asset.Ticker), "data": asset}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save asset after retries: %w", lastErr)
}

// List returns all known assets ordered by ticker.
func (s *AssetStore) List(ctx context.Context) ([]models.Asset, error) {
	sql := "SELECT * FROM assets ORDER BY ticker ASC"

	results, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

// Compile-time check
var _ interfaces.AssetStore = (*AssetStore)(nil)
