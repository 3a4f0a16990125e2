package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	"github.com/fuelsync/fuelsync/internal/clock"
	obsmetrics "github.com/fuelsync/fuelsync/internal/observability/metrics"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

var ErrInvalidConfig = errors.New("scheduler missing required dependencies")

// Config controls the sweep cadence.
type Config struct {
	RunInterval time.Duration
}

func DefaultConfig() Config {
	return Config{RunInterval: 5 * time.Minute}
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = DefaultConfig().RunInterval
	}
	return c
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	AlertSvc alertdomain.Service
	Clock    clock.Clock
	Config   Config `optional:"true"`
}

// Scheduler drives the alert rule sweeps on a fixed interval, once per
// tenant per tick.
type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	clk      clock.Clock
	alertSvc alertdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.AlertSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler"),
		cfg:      p.Config.withDefaults(),
		clk:      p.Clock,
		alertSvc: p.AlertSvc,
	}, nil
}

// RunOnce sweeps every tenant that has at least one station. A failing
// tenant does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := s.clk.Now()

	var tenantIDs []snowflake.ID
	err := s.db.WithContext(ctx).
		Table("stations").
		Distinct("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error
	if err != nil {
		obsmetrics.ObserveSweep("error", time.Since(start))
		return err
	}

	var firstErr error
	for _, tenantID := range tenantIDs {
		tenantCtx := tenantctx.WithTenantID(ctx, tenantID)
		summary, err := s.alertSvc.RunSweeps(tenantCtx)
		if err != nil {
			s.log.Warn("tenant sweep failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if summary.Raised > 0 {
			s.log.Info("tenant sweep raised alerts",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("raised", summary.Raised),
			)
		}
	}

	result := "ok"
	if firstErr != nil {
		result = "error"
	}
	obsmetrics.ObserveSweep(result, time.Since(start))
	return firstErr
}

// RunForever loops RunOnce until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
