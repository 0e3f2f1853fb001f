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

// WatchlistStore persists watchlist entries keyed by ticker.
type WatchlistStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewWatchlistStore(db *surrealdb.DB, logger *common.Logger) *WatchlistStore {
	return &WatchlistStore{
		db:     db,
		logger: logger,
	}
}

// List returns all watchlist entries ordered by ticker.
func (s *WatchlistStore) List(ctx context.Context) ([]models.WatchlistItem, error) {
	sql := "SELECT * FROM watchlist ORDER BY ticker ASC"

	results, err := surrealdb.Query[[]models.WatchlistItem](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

// Upsert creates or replaces the entry for its ticker.
func (s *WatchlistStore) Upsert(ctx context.Context, item *models.WatchlistItem) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("watchlist", item.Ticker), "data": item}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.WatchlistItem](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save watchlist item after retries: %w", lastErr)
}

// Delete removes a ticker from the watchlist. Deleting an absent ticker is
// a no-op.
func (s *WatchlistStore) Delete(ctx context.Context, ticker string) error {
	sql := "DELETE $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("watchlist", ticker)}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.WatchlistStore = (*WatchlistStore)(nil)
