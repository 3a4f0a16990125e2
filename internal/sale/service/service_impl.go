package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo saledomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo saledomain.Repository
}

func New(p Params) saledomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("sale.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req saledomain.ListRequest) ([]saledomain.Sale, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, saledomain.ErrInvalidTenant
	}

	filter := saledomain.ListFilter{
		PaymentMethod: req.PaymentMethod,
		Limit:         req.Limit,
	}
	var err error
	if filter.StationID, err = parseOptionalID(req.StationID); err != nil {
		return nil, saledomain.ErrInvalidStation
	}
	if filter.NozzleID, err = parseOptionalID(req.NozzleID); err != nil {
		return nil, saledomain.ErrInvalidStation
	}
	if filter.CreditorID, err = parseOptionalID(req.CreditorID); err != nil {
		return nil, saledomain.ErrInvalidStation
	}
	if req.From != nil {
		filter.From = req.From.UTC()
	}
	if req.To != nil {
		filter.To = req.To.UTC()
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, saledomain.ErrInvalidRange
	}

	return s.repo.List(ctx, s.db, tenantID, filter)
}

func (s *Service) TodayTotals(ctx context.Context, stationID string) (saledomain.DayTotals, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return saledomain.DayTotals{}, saledomain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(strings.TrimSpace(stationID))
	if err != nil || id == 0 {
		return saledomain.DayTotals{}, saledomain.ErrInvalidStation
	}

	return s.repo.TotalsForStationDate(ctx, s.db, tenantID, id, time.Now().UTC())
}

func parseOptionalID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return snowflake.ParseString(trimmed)
}
