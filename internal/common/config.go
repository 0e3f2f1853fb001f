// Package common provides shared utilities for SmartFolio
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// SystemKV is the minimal key-value capability config resolution needs.
// Implemented by the storage layer's system KV store.
type SystemKV interface {
	Get(ctx context.Context, key string) (string, error)
}

// Config holds all configuration for SmartFolio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Scanner     ScannerConfig `toml:"scanner"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP      FMPConfig      `toml:"fmp"`
	Yahoo    YahooConfig    `toml:"yahoo"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Telegram TelegramConfig `toml:"telegram"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// YahooConfig holds Yahoo Finance quote API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// TelegramConfig holds the notification sink configuration
type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID string `toml:"chat_id"`
}

// ScannerConfig holds alert scanner thresholds and schedule
type ScannerConfig struct {
	EarningsHorizonDays int     `toml:"earnings_horizon_days"`
	PriceShockPct       float64 `toml:"price_shock_pct"`
	ValuationDropRatio  float64 `toml:"valuation_drop_ratio"`
	Schedule            string  `toml:"schedule"` // cron expression, minute precision
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "smartfolio",
			Database:  "smartfolio",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "10s",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "10s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scanner: ScannerConfig{
			EarningsHorizonDays: 7,
			PriceShockPct:       5.0,
			ValuationDropRatio:  0.9,
			Schedule:            "30 21 * * 1-5",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SMARTFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SMARTFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SMARTFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SMARTFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("SMARTFOLIO_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if ns := os.Getenv("SMARTFOLIO_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}

	if db := os.Getenv("SMARTFOLIO_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}

	if sched := os.Getenv("SMARTFOLIO_SYNC_SCHEDULE"); sched != "" {
		config.Scanner.Schedule = sched
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, the system KV store,
// or the config fallback, in that order.
func ResolveAPIKey(ctx context.Context, store SystemKV, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"fmp_api_key":      {"FMP_API_KEY", "SMARTFOLIO_FMP_API_KEY"},
		"gemini_api_key":   {"GEMINI_API_KEY", "SMARTFOLIO_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"telegram_token":   {"TELEGRAM_TOKEN", "SMARTFOLIO_TELEGRAM_TOKEN"},
		"telegram_chat_id": {"TELEGRAM_CHAT_ID", "SMARTFOLIO_TELEGRAM_CHAT_ID"},
	}

	// Environment variables take highest priority
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// System KV store (runtime-configurable)
	if store != nil {
		if value, err := store.Get(ctx, name); err == nil && value != "" {
			return value, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
