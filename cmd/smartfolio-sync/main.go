// smartfolio-sync runs one daily sync pass and exits. Intended for external
// schedulers (cron, CI) as an alternative to the in-process scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smartfolio-app/smartfolio/internal/app"
)

const syncTimeout = 10 * time.Minute

func main() {
	configPath := os.Getenv("SMARTFOLIO_CONFIG")

	a, err := app.NewApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	report, err := a.AlertService.RunDailySync(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Sync failed")
		os.Exit(1)
	}

	a.Logger.Info().
		Int("tickers", len(report.Tickers)).
		Int("alerts", len(report.Alerts)).
		Int("assets_updated", report.AssetsUpdated).
		Msg("Sync complete")
}
