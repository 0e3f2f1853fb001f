package interfaces

import (
	"context"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// StorageManager owns the database connection and hands out typed stores.
type StorageManager interface {
	Transactions() TransactionStore
	Assets() AssetStore
	Watchlist() WatchlistStore
	SystemKV() SystemKVStore
	Close() error
}

// TransactionStore persists the append-only transaction log.
type TransactionStore interface {
	// Append stores a new transaction. The log is never updated in place.
	Append(ctx context.Context, tx *models.Transaction) error

	// List returns all transactions ordered by trade date ascending.
	List(ctx context.Context) ([]models.Transaction, error)
}

// AssetStore persists the per-ticker reference records.
type AssetStore interface {
	// Get returns the asset for a ticker, or models.ErrNotFound.
	Get(ctx context.Context, ticker string) (*models.Asset, error)

	// Upsert creates or replaces the asset record for its ticker.
	Upsert(ctx context.Context, asset *models.Asset) error

	List(ctx context.Context) ([]models.Asset, error)
}

// WatchlistStore persists watchlist entries keyed by ticker.
type WatchlistStore interface {
	List(ctx context.Context) ([]models.WatchlistItem, error)
	Upsert(ctx context.Context, item *models.WatchlistItem) error

	// Delete removes a ticker from the watchlist. Removing an absent
	// ticker is not an error.
	Delete(ctx context.Context, ticker string) error
}

// SystemKVStore is a small string key-value table for runtime settings
// such as API keys managed outside the config file.
type SystemKVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
