package alerts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

func testScannerConfig() common.ScannerConfig {
	return common.ScannerConfig{
		EarningsHorizonDays: 7,
		PriceShockPct:       5.0,
		ValuationDropRatio:  0.9,
	}
}

type fakeMarket struct {
	prices   map[string]float64
	changes  map[string]float64
	pes      map[string]float64
	earnings []models.EarningsEvent
	news     map[string][]models.NewsItem
}

func (f *fakeMarket) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	return nil, models.ErrNotFound
}

func (f *fakeMarket) GetPrice(ctx context.Context, ticker string) float64 {
	return f.prices[ticker]
}

func (f *fakeMarket) GetPENTM(ctx context.Context, ticker string) *float64 {
	pe, ok := f.pes[ticker]
	if !ok {
		return nil
	}
	return &pe
}

func (f *fakeMarket) GetFCFPerShare(ctx context.Context, ticker string) *float64 { return nil }

func (f *fakeMarket) GetDailyChange(ctx context.Context, ticker string) *float64 {
	change, ok := f.changes[ticker]
	if !ok {
		return nil
	}
	return &change
}

func (f *fakeMarket) GetEarnings(ctx context.Context, tickers []string, windowDays int) ([]models.EarningsEvent, error) {
	return f.earnings, nil
}

func (f *fakeMarket) ValidateTicker(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	return &models.TickerProfile{Ticker: ticker}, nil
}

func (f *fakeMarket) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return f.news[ticker], nil
}

type memAssetStore struct {
	assets map[string]models.Asset
}

func (m *memAssetStore) Get(ctx context.Context, ticker string) (*models.Asset, error) {
	a, ok := m.assets[ticker]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (m *memAssetStore) Upsert(ctx context.Context, asset *models.Asset) error {
	if m.assets == nil {
		m.assets = make(map[string]models.Asset)
	}
	m.assets[asset.Ticker] = *asset
	return nil
}

func (m *memAssetStore) List(ctx context.Context) ([]models.Asset, error) {
	var out []models.Asset
	for _, a := range m.assets {
		out = append(out, a)
	}
	return out, nil
}

type memStorage struct {
	assets memAssetStore
}

func (m *memStorage) Transactions() interfaces.TransactionStore { return nil }
func (m *memStorage) Assets() interfaces.AssetStore             { return &m.assets }
func (m *memStorage) Watchlist() interfaces.WatchlistStore      { return nil }
func (m *memStorage) SystemKV() interfaces.SystemKVStore        { return nil }
func (m *memStorage) Close() error                              { return nil }

type fakePortfolio struct {
	tickers []string
	err     error
}

func (f *fakePortfolio) GetDashboard(ctx context.Context) (*models.Dashboard, error) { return nil, nil }

func (f *fakePortfolio) GetHoldings(ctx context.Context) (*models.PortfolioValuation, error) {
	return nil, nil
}

func (f *fakePortfolio) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	return nil, nil
}

func (f *fakePortfolio) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return nil, nil
}

func (f *fakePortfolio) ActiveTickers(ctx context.Context) ([]string, error) {
	return f.tickers, f.err
}

func (f *fakePortfolio) RenderAllocationChart(ctx context.Context) ([]byte, error) { return nil, nil }

type fakeAnalyzer struct {
	analysis *models.NewsAnalysis
	err      error
	gotTexts []string
}

func (f *fakeAnalyzer) AnalyzeNewsImpact(ctx context.Context, texts []string) (*models.NewsAnalysis, error) {
	f.gotTexts = texts
	if f.err != nil {
		return models.DefaultNewsAnalysis("degraded"), f.err
	}
	return f.analysis, nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Send(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func alertsOfType(alerts []models.Alert, typ models.AlertType) []models.Alert {
	var out []models.Alert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestScan_Earnings(t *testing.T) {
	eps := 3.25
	market := &fakeMarket{
		earnings: []models.EarningsEvent{{Ticker: "NVDA", Date: "2026-09-04", EPSEstimate: &eps}},
	}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, nil, nil, testScannerConfig(), nil)

	alerts, sections, err := svc.Scan(context.Background(), []string{"NVDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := alertsOfType(alerts, models.AlertTypeEarnings)
	if len(found) != 1 {
		t.Fatalf("expected 1 earnings alert, got %d", len(found))
	}
	if !strings.Contains(found[0].Message, "2026-09-04") || !strings.Contains(found[0].Message, "3.25") {
		t.Errorf("message: %q", found[0].Message)
	}
	if len(sections) != 1 || sections[0].Title != "Upcoming Earnings" {
		t.Errorf("sections: %+v", sections)
	}
}

func TestScan_PriceShock(t *testing.T) {
	market := &fakeMarket{changes: map[string]float64{
		"NVDA": -6.2,
		"AAPL": 5.0, // at the threshold fires
		"MSFT": 4.9,
	}}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, nil, nil, testScannerConfig(), nil)

	alerts, _, err := svc.Scan(context.Background(), []string{"NVDA", "AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := alertsOfType(alerts, models.AlertTypePrice)
	if len(found) != 2 {
		t.Fatalf("expected 2 price alerts, got %+v", found)
	}
	if !strings.Contains(found[0].Message, "down 6.20%") {
		t.Errorf("message: %q", found[0].Message)
	}
}

func TestScan_ValuationDrop(t *testing.T) {
	baseline := 20.0
	storage := &memStorage{assets: memAssetStore{assets: map[string]models.Asset{
		"NVDA": {Ticker: "NVDA", PENTM: &baseline},
	}}}
	market := &fakeMarket{pes: map[string]float64{"NVDA": 17.0}}
	svc := NewService(&fakePortfolio{}, storage, market, nil, nil, testScannerConfig(), nil)

	alerts, _, err := svc.Scan(context.Background(), []string{"NVDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := alertsOfType(alerts, models.AlertTypeValuation)
	if len(found) != 1 {
		t.Fatalf("expected 1 valuation alert, got %+v", found)
	}
	// 17/20 = 0.85 < 0.9, drop of 15.0%
	if !strings.Contains(found[0].Message, "15.0%") {
		t.Errorf("message: %q", found[0].Message)
	}
}

func TestScan_ValuationWithinRatioStaysQuiet(t *testing.T) {
	baseline := 20.0
	storage := &memStorage{assets: memAssetStore{assets: map[string]models.Asset{
		"NVDA": {Ticker: "NVDA", PENTM: &baseline},
	}}}
	market := &fakeMarket{pes: map[string]float64{"NVDA": 18.5}} // ratio 0.925
	svc := NewService(&fakePortfolio{}, storage, market, nil, nil, testScannerConfig(), nil)

	alerts, _, _ := svc.Scan(context.Background(), []string{"NVDA"})
	if found := alertsOfType(alerts, models.AlertTypeValuation); len(found) != 0 {
		t.Errorf("expected no valuation alerts, got %+v", found)
	}
}

func TestScan_NewsImpact(t *testing.T) {
	market := &fakeMarket{news: map[string][]models.NewsItem{
		"NVDA": {{Title: "Major contract win", Text: "Details"}},
	}}
	analyzer := &fakeAnalyzer{analysis: &models.NewsAnalysis{
		Summary:     "Large new contract announced.",
		Sentiment:   0.8,
		ImpactLevel: models.ImpactHigh,
	}}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, analyzer, nil, testScannerConfig(), nil)

	alerts, _, err := svc.Scan(context.Background(), []string{"NVDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := alertsOfType(alerts, models.AlertTypeNews)
	if len(found) != 1 {
		t.Fatalf("expected 1 news alert, got %+v", found)
	}
	if !strings.Contains(found[0].Message, "Large new contract announced.") {
		t.Errorf("message: %q", found[0].Message)
	}
}

func TestScan_NoNewsUsesFallbackText(t *testing.T) {
	market := &fakeMarket{}
	analyzer := &fakeAnalyzer{analysis: models.DefaultNewsAnalysis("Nothing notable.")}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, analyzer, nil, testScannerConfig(), nil)

	alerts, _, _ := svc.Scan(context.Background(), []string{"NVDA"})

	if len(analyzer.gotTexts) != 1 || analyzer.gotTexts[0] != "NVDA market update." {
		t.Errorf("expected fallback text, got %v", analyzer.gotTexts)
	}
	if found := alertsOfType(alerts, models.AlertTypeNews); len(found) != 0 {
		t.Errorf("expected no news alerts, got %+v", found)
	}
}

func TestScan_LowImpactNewsStaysQuiet(t *testing.T) {
	market := &fakeMarket{news: map[string][]models.NewsItem{
		"NVDA": {{Title: "Quiet week", Text: "Nothing notable"}},
	}}
	analyzer := &fakeAnalyzer{analysis: models.DefaultNewsAnalysis("Nothing notable.")}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, analyzer, nil, testScannerConfig(), nil)

	alerts, _, _ := svc.Scan(context.Background(), []string{"NVDA"})
	if found := alertsOfType(alerts, models.AlertTypeNews); len(found) != 0 {
		t.Errorf("expected no news alerts, got %+v", found)
	}
}

func TestScan_NilAnalyzerDegrades(t *testing.T) {
	market := &fakeMarket{news: map[string][]models.NewsItem{
		"NVDA": {{Title: "Big news", Text: "Huge"}},
	}}
	svc := NewService(&fakePortfolio{}, &memStorage{}, market, nil, nil, testScannerConfig(), nil)

	alerts, _, err := svc.Scan(context.Background(), []string{"NVDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found := alertsOfType(alerts, models.AlertTypeNews); len(found) != 0 {
		t.Errorf("nil analyzer must not fire news alerts, got %+v", found)
	}
}

func TestRefreshAssets(t *testing.T) {
	storage := &memStorage{assets: memAssetStore{assets: map[string]models.Asset{
		"NVDA": {Ticker: "NVDA", Name: "NVIDIA Corp", LastPrice: 100},
	}}}
	market := &fakeMarket{
		prices: map[string]float64{"NVDA": 120},
		pes:    map[string]float64{"NVDA": 25.0},
	}
	svc := NewService(&fakePortfolio{}, storage, market, nil, nil, testScannerConfig(), nil)

	updated := svc.RefreshAssets(context.Background(), []string{"NVDA", "UNKNOWN"})
	if updated != 1 {
		t.Errorf("updated: got %d", updated)
	}

	asset := storage.assets.assets["NVDA"]
	if asset.LastPrice != 120 {
		t.Errorf("price not refreshed: %v", asset.LastPrice)
	}
	if asset.PENTM == nil || *asset.PENTM != 25.0 {
		t.Errorf("pe not refreshed: %v", asset.PENTM)
	}
	if asset.Name != "NVIDIA Corp" {
		t.Errorf("reference fields must survive refresh: %q", asset.Name)
	}
	if asset.LastUpdated.IsZero() {
		t.Error("last updated not set")
	}
}

func TestRunDailySync_ScanUsesBaselineBeforeRefresh(t *testing.T) {
	baseline := 20.0
	storage := &memStorage{assets: memAssetStore{assets: map[string]models.Asset{
		"NVDA": {Ticker: "NVDA", PENTM: &baseline},
	}}}
	market := &fakeMarket{
		prices: map[string]float64{"NVDA": 100},
		pes:    map[string]float64{"NVDA": 17.0},
	}
	notifier := &fakeNotifier{}
	svc := NewService(&fakePortfolio{tickers: []string{"NVDA"}}, storage, market, nil, notifier, testScannerConfig(), nil)

	report, err := svc.RunDailySync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if found := alertsOfType(report.Alerts, models.AlertTypeValuation); len(found) != 1 {
		t.Fatalf("valuation alert must fire against the pre-refresh baseline, got %+v", report.Alerts)
	}
	if report.AssetsUpdated != 1 {
		t.Errorf("assets updated: got %d", report.AssetsUpdated)
	}

	// baseline rewritten for the next run
	if refreshed := storage.assets.assets["NVDA"]; refreshed.PENTM == nil || *refreshed.PENTM != 17.0 {
		t.Errorf("baseline not refreshed: %v", refreshed.PENTM)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "SmartFolio Daily Report") {
		t.Errorf("message: %q", notifier.messages[0])
	}
}

func TestRunDailySync_EmptyPortfolio(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(&fakePortfolio{}, &memStorage{}, &fakeMarket{}, nil, notifier, testScannerConfig(), nil)

	report, err := svc.RunDailySync(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HasAlerts() || report.AssetsUpdated != 0 {
		t.Errorf("got %+v", report)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("empty portfolio still delivers a report")
	}
	if !strings.Contains(notifier.messages[0], "No alerts today") {
		t.Errorf("message: %q", notifier.messages[0])
	}
}

func TestRunDailySync_NotifierFailureDoesNotFail(t *testing.T) {
	storage := &memStorage{assets: memAssetStore{assets: map[string]models.Asset{
		"NVDA": {Ticker: "NVDA"},
	}}}
	market := &fakeMarket{prices: map[string]float64{"NVDA": 100}}
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	svc := NewService(&fakePortfolio{tickers: []string{"NVDA"}}, storage, market, nil, notifier, testScannerConfig(), nil)

	report, err := svc.RunDailySync(context.Background())
	if err != nil {
		t.Fatalf("delivery failure must not fail the sync: %v", err)
	}
	if report.AssetsUpdated != 1 {
		t.Errorf("assets updated: got %d", report.AssetsUpdated)
	}
}

func TestRunDailySync_NilNotifier(t *testing.T) {
	svc := NewService(&fakePortfolio{tickers: []string{"NVDA"}}, &memStorage{}, &fakeMarket{}, nil, nil, testScannerConfig(), nil)
	if _, err := svc.RunDailySync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
