package scheduler

import (
	"context"

	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/clock"
	"github.com/fuelsync/fuelsync/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(clock.NewSystemClock),
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{RunInterval: cfg.AlertSweepInterval}
}

func NewScheduler(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if cfg.AlertSweepInterval <= 0 {
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
