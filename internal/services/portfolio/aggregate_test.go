package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func buy(ticker string, shares, price float64) models.Transaction {
	return models.Transaction{
		Ticker: ticker,
		Date:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Type:   models.TransactionBuy,
		Shares: shares,
		Price:  price,
		Amount: shares * price,
	}
}

func sell(ticker string, shares, price float64) models.Transaction {
	tx := buy(ticker, shares, price)
	tx.Type = models.TransactionSell
	return tx
}

func TestAggregatePositions_SingleBuy(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{buy("NVDA", 10, 100)})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	p := positions[0]
	if p.Ticker != "NVDA" || p.NetShares != 10 || p.TotalCost != 1000 || p.AvgCost != 100 {
		t.Errorf("got %+v", p)
	}
}

func TestAggregatePositions_WeightedAverage(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{
		buy("NVDA", 10, 100),
		buy("NVDA", 10, 200),
	})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	p := positions[0]
	if p.NetShares != 20 {
		t.Errorf("net shares: got %v", p.NetShares)
	}
	if p.TotalCost != 3000 {
		t.Errorf("total cost: got %v", p.TotalCost)
	}
	if p.AvgCost != 150 {
		t.Errorf("avg cost: got %v", p.AvgCost)
	}
}

func TestAggregatePositions_EmptyLog(t *testing.T) {
	if positions := AggregatePositions(nil); len(positions) != 0 {
		t.Errorf("expected no positions, got %+v", positions)
	}
}

func TestAggregatePositions_NormalizesTickers(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{
		buy(" nvda ", 5, 100),
		buy("NVDA", 5, 100),
	})
	if len(positions) != 1 || positions[0].NetShares != 10 {
		t.Errorf("got %+v", positions)
	}
}

func TestAggregatePositions_DropsClosedPositions(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{
		buy("NVDA", 10, 100),
		sell("NVDA", 10, 120),
		buy("AAPL", 5, 200),
	})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].Ticker != "AAPL" {
		t.Errorf("got %+v", positions[0])
	}
}

func TestAggregatePositions_NeverNegativeShares(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{
		buy("NVDA", 10, 100),
		sell("NVDA", 15, 120), // over-closed
	})
	for _, p := range positions {
		if p.NetShares <= 0 {
			t.Errorf("position with non-positive shares surfaced: %+v", p)
		}
	}
}

func TestAggregatePositions_SortedByTicker(t *testing.T) {
	positions := AggregatePositions([]models.Transaction{
		buy("NVDA", 1, 1),
		buy("AAPL", 1, 1),
		buy("MSFT", 1, 1),
	})
	want := []string{"AAPL", "MSFT", "NVDA"}
	for i, p := range positions {
		if p.Ticker != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.Ticker, want[i])
		}
	}
}

func TestAggregatePositions_RoundTrip(t *testing.T) {
	log := []models.Transaction{buy("NVDA", 10, 100)}
	before := AggregatePositions(log)

	log = append(log, buy("NVDA", 5, 110))
	after := AggregatePositions(log)

	if before[0].NetShares != 10 {
		t.Errorf("before append: got %v shares", before[0].NetShares)
	}
	if after[0].NetShares != 15 {
		t.Errorf("after append: got %v shares, want exactly one increment", after[0].NetShares)
	}
}
