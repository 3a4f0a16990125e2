package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/alert/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

type Params struct {
	fx.In
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	PriceRepo fuelpricedomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	priceRepo fuelpricedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("alert.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		priceRepo: p.PriceRepo,
	}
}

func (s *Service) Raise(ctx context.Context, db *gorm.DB, req domain.RaiseRequest) (*domain.Alert, error) {
	if db == nil {
		db = s.db
	}

	now := time.Now().UTC()
	exists, err := s.repo.ExistsOnDay(ctx, db, req.TenantID, req.StationID, req.Type, now)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	alert := &domain.Alert{
		ID:        s.genID.Generate(),
		TenantID:  req.TenantID,
		StationID: req.StationID,
		Type:      req.Type,
		Severity:  req.Severity,
		Message:   req.Message,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, db, alert); err != nil {
		return nil, err
	}

	s.log.Info("alert raised",
		zap.String("type", string(req.Type)),
		zap.String("severity", string(req.Severity)),
	)
	return alert, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Alert, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	filter := domain.ListFilter{
		Unacknowledged: req.Unacknowledged,
		Limit:          req.Limit,
	}
	if req.StationID != "" {
		id, err := snowflake.ParseString(req.StationID)
		if err != nil {
			return nil, domain.ErrInvalidStation
		}
		filter.StationID = &id
	}
	if req.Type != "" {
		t := domain.AlertType(req.Type)
		filter.Type = &t
	}

	return s.repo.List(ctx, s.db, tenantID, filter)
}

func (s *Service) Acknowledge(ctx context.Context, idStr string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(idStr)
	if err != nil {
		return domain.ErrInvalidID
	}

	affected, err := s.repo.Acknowledge(ctx, s.db, tenantID, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		alert, err := s.repo.FindByID(ctx, s.db, tenantID, id)
		if err != nil {
			return err
		}
		if alert == nil {
			return domain.ErrNotFound
		}
		// Already acknowledged; acknowledging twice is a no-op.
	}
	return nil
}

func (s *Service) RunSweeps(ctx context.Context) (*domain.SweepSummary, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	return s.sweep(ctx, tenantID)
}
