package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  fuelpricedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  fuelpricedomain.Repository
	genID *snowflake.Node
}

func New(p Params) fuelpricedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("fuelprice.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

// Create starts a new effective interval. The previously open interval for
// the same (station, fuel type) is closed at the new valid_from inside the
// same transaction, which keeps intervals non-overlapping.
func (s *Service) Create(ctx context.Context, req fuelpricedomain.CreateRequest) (*fuelpricedomain.FuelPrice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, fuelpricedomain.ErrInvalidTenant
	}

	stationID, err := snowflake.ParseString(strings.TrimSpace(req.StationID))
	if err != nil || stationID == 0 {
		return nil, fuelpricedomain.ErrInvalidStation
	}
	if !stationdomain.ValidFuelType(req.FuelType) {
		return nil, fuelpricedomain.ErrInvalidFuelType
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, fuelpricedomain.ErrInvalidPrice
	}
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		return nil, fuelpricedomain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	validFrom := now
	if req.ValidFrom != nil && !req.ValidFrom.IsZero() {
		validFrom = req.ValidFrom.UTC()
	}

	price := &fuelpricedomain.FuelPrice{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		StationID: stationID,
		FuelType:  req.FuelType,
		Price:     req.Price.Round(2),
		CostPrice: req.CostPrice,
		ValidFrom: validFrom,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A new interval must start after every existing one, otherwise
		// closing the open interval at validFrom would leave two rows
		// covering the same instant.
		latest, err := s.repo.FindLatest(ctx, tx, tenantID, stationID, req.FuelType)
		if err != nil {
			return err
		}
		if latest != nil && !validFrom.After(latest.ValidFrom) {
			return fuelpricedomain.ErrPriceBackdated
		}
		if err := s.repo.CloseOpenInterval(ctx, tx, tenantID, stationID, req.FuelType, validFrom); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, price)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("fuel price created",
		zap.String("station_id", stationID.String()),
		zap.String("fuel_type", string(req.FuelType)),
		zap.String("price", price.Price.String()),
	)
	return price, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return fuelpricedomain.ErrInvalidTenant
	}

	priceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return fuelpricedomain.ErrInvalidID
	}

	price, err := s.repo.FindByID(ctx, s.db, tenantID, priceID)
	if err != nil {
		return err
	}
	if price == nil {
		return fuelpricedomain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, tenantID, priceID)
}

func (s *Service) List(ctx context.Context, req fuelpricedomain.ListRequest) ([]fuelpricedomain.FuelPrice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, fuelpricedomain.ErrInvalidTenant
	}

	filter := fuelpricedomain.ListFilter{FuelType: req.FuelType}
	if strings.TrimSpace(req.StationID) != "" {
		stationID, err := snowflake.ParseString(strings.TrimSpace(req.StationID))
		if err != nil {
			return nil, fuelpricedomain.ErrInvalidStation
		}
		filter.StationID = stationID
	}
	return s.repo.List(ctx, s.db, tenantID, filter)
}

func (s *Service) GetPriceAt(ctx context.Context, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType, at time.Time) (*fuelpricedomain.FuelPrice, error) {
	price, err := s.repo.FindAt(ctx, s.db, tenantID, stationID, fuelType, at)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, fuelpricedomain.ErrPriceMissing
	}
	return price, nil
}

func (s *Service) HasCurrentPrice(ctx context.Context, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType) (bool, error) {
	price, err := s.repo.FindAt(ctx, s.db, tenantID, stationID, fuelType, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return price != nil, nil
}
