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

// KVStore is a small string key-value table for runtime settings such as
// API keys managed outside the config file.
type KVStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewKVStore(db *surrealdb.DB, logger *common.Logger) *KVStore {
	return &KVStore{
		db:     db,
		logger: logger,
	}
}

type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Get returns the value for a key, or models.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	record, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return "", fmt.Errorf("failed to select system kv: %w", err)
	}
	if record == nil || record.Key == "" {
		return "", fmt.Errorf("system kv %s: %w", key, models.ErrNotFound)
	}
	return record.Value, nil
}

// Set creates or replaces the value for a key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("system_kv", key),
		"data": kvRecord{Key: key, Value: value},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save system kv after retries: %w", lastErr)
}

// Compile-time check
var _ interfaces.SystemKVStore = (*KVStore)(nil)
