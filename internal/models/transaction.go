// Package models defines data structures for SmartFolio
package models

import (
	"strings"
	"time"
)

// TransactionType categorizes trades. Only BUY is produced by the current
// flows; SELL is schema-permitted so the aggregator can apply signed deltas
// without restructuring if a sell path is added.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Transaction is an immutable record of one trade. Records are appended by
// the add-transaction flow and never updated or deleted.
type Transaction struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	Date      time.Time       `json:"date"`
	Type      TransactionType `json:"type"`
	Shares    float64         `json:"shares"`
	Price     float64         `json:"price"`
	Amount    float64         `json:"amount"` // shares × price, persisted for aggregation
	CreatedAt time.Time       `json:"created_at"`
}

// SignedShares returns the share delta this transaction contributes to a
// position: positive for buys, negative for sells.
func (t *Transaction) SignedShares() float64 {
	if t.Type == TransactionSell {
		return -t.Shares
	}
	return t.Shares
}

// SignedAmount returns the cost delta this transaction contributes.
func (t *Transaction) SignedAmount() float64 {
	if t.Type == TransactionSell {
		return -t.Amount
	}
	return t.Amount
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
