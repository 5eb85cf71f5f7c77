package bootstrap

import (
	"context"
	"log/slog"

	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Provide(
		func() *cron.Cron {
			return cron.New()
		},
	),
	fx.Invoke(StartSweeper),
)

// StartSweeper schedules the periodic expiry sweep. The job is idempotent, so
// overlapping or missed runs are harmless.
func StartSweeper(
	lc fx.Lifecycle,
	c *cron.Cron,
	cfg config.Config,
	reschedule commands.ReschedulingCommands,
	logger *slog.Logger,
) error {
	_, err := c.AddFunc(cfg.Sweep.Schedule, func() {
		expired, err := reschedule.SweepExpired(context.Background())
		if err != nil {
			logger.Error("expiry sweep failed", "error", err.Error())
			return
		}
		if expired > 0 {
			logger.Info("expiry sweep completed", "expired", expired)
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			c.Start()
			logger.Info("expiry sweeper started", "schedule", cfg.Sweep.Schedule)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := c.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
