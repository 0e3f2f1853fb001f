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

// TransactionStore persists the append-only transaction log.
type TransactionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewTransactionStore(db *surrealdb.DB, logger *common.Logger) *TransactionStore {
	return &TransactionStore{
		db:     db,
		logger: logger,
	}
}

// Append stores a new transaction record keyed by its generated ID. The
// log is append-only: records are never updated or deleted.
func (s *TransactionStore) Append(ctx context.Context, tx *models.Transaction) error {
	sql := "CREATE $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("transactions", tx.ID), "data": tx}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to append transaction after retries: %w", lastErr)
}

// List returns all transactions ordered by trade date ascending.
func (s *TransactionStore) List(ctx context.Context) ([]models.Transaction, error) {
	sql := "SELECT * FROM transactions ORDER BY date ASC"

	results, err := surrealdb.Query[[]models.Transaction](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

// Compile-time check
var _ interfaces.TransactionStore = (*TransactionStore)(nil)
