// Package app wires configuration, storage, clients, and services together
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/clients/fmp"
	"github.com/smartfolio-app/smartfolio/internal/clients/gemini"
	"github.com/smartfolio-app/smartfolio/internal/clients/telegram"
	"github.com/smartfolio-app/smartfolio/internal/clients/yahoo"
	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/services/alerts"
	"github.com/smartfolio-app/smartfolio/internal/services/market"
	"github.com/smartfolio-app/smartfolio/internal/services/portfolio"
	"github.com/smartfolio-app/smartfolio/internal/services/watchlist"
	storage "github.com/smartfolio-app/smartfolio/internal/storage/surrealdb"
)

// App holds all initialized clients and services. It is the shared core
// used by cmd/smartfolio-server and cmd/smartfolio-sync.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	FMPClient        interfaces.FMPClient
	QuoteClient      interfaces.QuoteClient
	MarketService    interfaces.MarketDataService
	PortfolioService interfaces.PortfolioService
	WatchlistService interfaces.WatchlistService
	AlertService     interfaces.AlertService
	StartupTime      time.Time

	schedulerStop func()
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, env var, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("SMARTFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "smartfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/smartfolio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	kv := storageManager.SystemKV()

	fmpKey, err := common.ResolveAPIKey(ctx, kv, "fmp_api_key", config.Clients.FMP.APIKey)
	if err != nil {
		logger.Warn().Msg("FMP API key not configured - fundamentals and validation will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey(ctx, kv, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - news analysis will be degraded")
	}

	telegramToken, err := common.ResolveAPIKey(ctx, kv, "telegram_token", config.Clients.Telegram.Token)
	if err != nil {
		logger.Warn().Msg("Telegram token not configured - report delivery will be skipped")
	}
	telegramChatID, _ := common.ResolveAPIKey(ctx, kv, "telegram_chat_id", config.Clients.Telegram.ChatID)

	fmpClient := fmp.NewClient(fmpKey,
		fmp.WithBaseURL(config.Clients.FMP.BaseURL),
		fmp.WithLogger(logger),
		fmp.WithRateLimit(config.Clients.FMP.RateLimit),
		fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
	)

	quoteClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	var analyzer interfaces.NewsAnalyzer
	if geminiKey != "" {
		geminiClient, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			analyzer = geminiClient
		}
	}

	var notifier interfaces.Notifier
	if telegramToken != "" && telegramChatID != "" {
		notifier = telegram.NewClient(telegramToken, telegramChatID,
			telegram.WithLogger(logger),
		)
	}

	marketService := market.NewService(fmpClient, quoteClient, logger)
	portfolioService := portfolio.NewService(storageManager, marketService, logger)
	watchlistService := watchlist.NewService(storageManager, marketService, logger)
	alertService := alerts.NewService(portfolioService, storageManager, marketService, analyzer, notifier, config.Scanner, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		FMPClient:        fmpClient,
		QuoteClient:      quoteClient,
		MarketService:    marketService,
		PortfolioService: portfolioService,
		WatchlistService: watchlistService,
		AlertService:     alertService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.schedulerStop != nil {
		a.schedulerStop()
		a.schedulerStop = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
