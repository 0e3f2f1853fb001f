package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// syncTimeout bounds one scheduled sync run end to end, including all
// provider calls and report delivery.
const syncTimeout = 10 * time.Minute

// StartSyncScheduler launches the cron-driven daily sync. The schedule
// comes from config (scanner.schedule, standard 5-field cron).
func (a *App) StartSyncScheduler() error {
	schedule := a.Config.Scanner.Schedule
	if schedule == "" {
		a.Logger.Info().Msg("Sync scheduler disabled: no schedule configured")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if _, err := a.AlertService.RunDailySync(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Scheduled sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	c.Start()
	a.schedulerStop = func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}

	a.Logger.Info().Str("schedule", schedule).Msg("Sync scheduler started")
	return nil
}
