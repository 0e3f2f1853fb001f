package portfolio

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// fakeMarket serves canned quotes per ticker. Tickers absent from the map
// behave like a permanently failed provider lookup.
type fakeMarket struct {
	quotes map[string]models.Quote
}

func (f *fakeMarket) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, errors.New("quote unavailable")
	}
	return &q, nil
}

func (f *fakeMarket) GetPrice(ctx context.Context, ticker string) float64 {
	q, ok := f.quotes[ticker]
	if !ok {
		return 0
	}
	return q.Price
}

func (f *fakeMarket) GetPENTM(ctx context.Context, ticker string) *float64 { return nil }

func (f *fakeMarket) GetFCFPerShare(ctx context.Context, ticker string) *float64 { return nil }

func (f *fakeMarket) GetDailyChange(ctx context.Context, ticker string) *float64 { return nil }

func (f *fakeMarket) GetEarnings(ctx context.Context, tickers []string, windowDays int) ([]models.EarningsEvent, error) {
	return nil, nil
}

func (f *fakeMarket) ValidateTicker(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	if _, ok := f.quotes[models.NormalizeTicker(ticker)]; !ok {
		return nil, models.ErrNotFound
	}
	return &models.TickerProfile{Ticker: models.NormalizeTicker(ticker), Name: ticker + " Inc.", Sector: "Technology"}, nil
}

func (f *fakeMarket) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return nil, nil
}

func TestValue_SingleHolding(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"NVDA": {Ticker: "NVDA", Price: 120},
	}}
	positions := AggregatePositions([]models.Transaction{buy("NVDA", 10, 100)})

	valuation := Value(context.Background(), positions, market, nil)
	if len(valuation.Holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(valuation.Holdings))
	}
	h := valuation.Holdings[0]
	if h.MarketValue != 1200 {
		t.Errorf("market value: got %v", h.MarketValue)
	}
	if h.AvgCost != 100 {
		t.Errorf("avg cost: got %v", h.AvgCost)
	}
	if h.PnlPct != 20.0 {
		t.Errorf("pnl pct: got %v", h.PnlPct)
	}
	if valuation.TotalValue != 1200 || valuation.TotalPnlPct != 20.0 {
		t.Errorf("totals: got %v / %v", valuation.TotalValue, valuation.TotalPnlPct)
	}
}

func TestValue_EmptyPortfolio(t *testing.T) {
	valuation := Value(context.Background(), nil, &fakeMarket{}, nil)
	if len(valuation.Holdings) != 0 {
		t.Errorf("holdings: got %+v", valuation.Holdings)
	}
	if valuation.TotalValue != 0 || valuation.TotalPnlPct != 0 {
		t.Errorf("totals: got %v / %v", valuation.TotalValue, valuation.TotalPnlPct)
	}
}

func TestValue_OneTickerFailsOthersCompute(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: 200},
		"MSFT": {Ticker: "MSFT", Price: 400},
		// NVDA missing: permanent provider failure
	}}
	positions := AggregatePositions([]models.Transaction{
		buy("AAPL", 10, 150),
		buy("MSFT", 5, 300),
		buy("NVDA", 2, 500),
	})

	valuation := Value(context.Background(), positions, market, nil)
	if len(valuation.Holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(valuation.Holdings))
	}

	byTicker := make(map[string]models.Holding)
	for _, h := range valuation.Holdings {
		byTicker[h.Ticker] = h
	}

	if failed := byTicker["NVDA"]; failed.CurrentPrice != 0 || failed.MarketValue != 0 || failed.PENTM != nil {
		t.Errorf("failed ticker should degrade to zero/absent: %+v", failed)
	}
	if byTicker["AAPL"].MarketValue != 2000 {
		t.Errorf("AAPL: got %+v", byTicker["AAPL"])
	}
	if byTicker["MSFT"].MarketValue != 2000 {
		t.Errorf("MSFT: got %+v", byTicker["MSFT"])
	}
	if valuation.TotalValue != 4000 {
		t.Errorf("total value: got %v", valuation.TotalValue)
	}
}

func TestValue_Idempotent(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: 201.37},
		"NVDA": {Ticker: "NVDA", Price: 119.99},
	}}
	positions := AggregatePositions([]models.Transaction{
		buy("AAPL", 3, 150.25),
		buy("NVDA", 7, 101.10),
	})

	first := Value(context.Background(), positions, market, nil)
	second := Value(context.Background(), positions, market, nil)

	if !reflect.DeepEqual(first.Holdings, second.Holdings) {
		t.Errorf("holdings differ between identical runs:\n%+v\n%+v", first.Holdings, second.Holdings)
	}
	if first.TotalValue != second.TotalValue || first.TotalPnlPct != second.TotalPnlPct {
		t.Errorf("totals differ between identical runs")
	}
}

func TestValue_AssetLookupEnrichment(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: 200},
	}}
	positions := AggregatePositions([]models.Transaction{buy("AAPL", 1, 150)})

	pe := 25.5
	lookup := func(ticker string) *models.Asset {
		return &models.Asset{Ticker: ticker, Name: "Apple Inc.", Sector: "Technology", PENTM: &pe}
	}

	valuation := Value(context.Background(), positions, market, lookup)
	h := valuation.Holdings[0]
	if h.Name != "Apple Inc." || h.Sector != "Technology" {
		t.Errorf("got %+v", h)
	}
	if h.PENTM == nil || *h.PENTM != 25.5 {
		t.Errorf("pe: got %v", h.PENTM)
	}
}

func TestDailyChange(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: 105, PreviousClose: 100},
		"NVDA": {Ticker: "NVDA", Price: 95, PreviousClose: 100},
	}}
	positions := AggregatePositions([]models.Transaction{
		buy("AAPL", 10, 50),
		buy("NVDA", 10, 50),
	})

	perf := DailyChange(context.Background(), positions, market)
	// AAPL +50, NVDA -50: flat in value terms
	if perf.ChangeValue != 0 {
		t.Errorf("change value: got %v", perf.ChangeValue)
	}
	if perf.ChangePct != 0 {
		t.Errorf("change pct: got %v", perf.ChangePct)
	}
}

func TestDailyChange_SkipsFailedQuotes(t *testing.T) {
	market := &fakeMarket{quotes: map[string]models.Quote{
		"AAPL": {Ticker: "AAPL", Price: 110, PreviousClose: 100},
	}}
	positions := AggregatePositions([]models.Transaction{
		buy("AAPL", 10, 50),
		buy("NVDA", 10, 50),
	})

	perf := DailyChange(context.Background(), positions, market)
	if perf.ChangeValue != 100 {
		t.Errorf("change value: got %v", perf.ChangeValue)
	}
	if perf.ChangePct != 10 {
		t.Errorf("change pct: got %v", perf.ChangePct)
	}
}

func TestDailyChange_EmptyPortfolio(t *testing.T) {
	perf := DailyChange(context.Background(), nil, &fakeMarket{})
	if perf.ChangeValue != 0 || perf.ChangePct != 0 {
		t.Errorf("got %+v", perf)
	}
}
