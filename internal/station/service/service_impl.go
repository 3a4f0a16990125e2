package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
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
	Repo  stationdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  stationdomain.Repository
	genID *snowflake.Node
}

func New(p Params) stationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("station.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) CreateStation(ctx context.Context, req stationdomain.CreateStationRequest) (*stationdomain.Station, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, stationdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	station := &stationdomain.Station{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		Status:    stationdomain.StationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertStation(ctx, s.db, station); err != nil {
		return nil, err
	}
	return station, nil
}

func (s *Service) ListStations(ctx context.Context) ([]stationdomain.Station, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}
	return s.repo.ListStations(ctx, s.db, tenantID)
}

func (s *Service) GetStation(ctx context.Context, id string) (*stationdomain.Station, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	stationID, err := stationdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, stationdomain.ErrInvalidID
	}

	station, err := s.repo.FindStationByID(ctx, s.db, tenantID, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, stationdomain.ErrNotFound
	}
	return station, nil
}

func (s *Service) UpdateStation(ctx context.Context, req stationdomain.UpdateStationRequest) (*stationdomain.Station, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	stationID, err := stationdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, stationdomain.ErrInvalidID
	}

	station, err := s.repo.FindStationByID(ctx, s.db, tenantID, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, stationdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, stationdomain.ErrInvalidName
		}
		station.Name = name
	}
	if req.Address != nil {
		station.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		switch *req.Status {
		case stationdomain.StationActive, stationdomain.StationInactive:
			station.Status = *req.Status
		default:
			return nil, stationdomain.ErrInvalidStatus
		}
	}

	station.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStation(ctx, s.db, station); err != nil {
		return nil, err
	}
	return station, nil
}

func (s *Service) CreatePump(ctx context.Context, req stationdomain.CreatePumpRequest) (*stationdomain.Pump, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	stationID, err := stationdomain.ParseID(strings.TrimSpace(req.StationID))
	if err != nil {
		return nil, stationdomain.ErrInvalidStation
	}
	station, err := s.repo.FindStationByID(ctx, s.db, tenantID, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, stationdomain.ErrInvalidStation
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, stationdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	pump := &stationdomain.Pump{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		StationID: stationID,
		Name:      name,
		Status:    stationdomain.PumpActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertPump(ctx, s.db, pump); err != nil {
		return nil, err
	}
	return pump, nil
}

func (s *Service) ListPumps(ctx context.Context, stationID string) ([]stationdomain.Pump, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	var id snowflake.ID
	if strings.TrimSpace(stationID) != "" {
		parsed, err := stationdomain.ParseID(strings.TrimSpace(stationID))
		if err != nil {
			return nil, stationdomain.ErrInvalidStation
		}
		id = parsed
	}
	return s.repo.ListPumps(ctx, s.db, tenantID, id)
}

func (s *Service) UpdatePumpStatus(ctx context.Context, id string, status stationdomain.PumpStatus) (*stationdomain.Pump, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	pumpID, err := stationdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, stationdomain.ErrInvalidID
	}

	switch status {
	case stationdomain.PumpActive, stationdomain.PumpInactive, stationdomain.PumpMaintenance:
	default:
		return nil, stationdomain.ErrInvalidStatus
	}

	pump, err := s.repo.FindPumpByID(ctx, s.db, tenantID, pumpID)
	if err != nil {
		return nil, err
	}
	if pump == nil {
		return nil, stationdomain.ErrNotFound
	}

	pump.Status = status
	pump.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdatePump(ctx, s.db, pump); err != nil {
		return nil, err
	}
	return pump, nil
}

func (s *Service) CreateNozzle(ctx context.Context, req stationdomain.CreateNozzleRequest) (*stationdomain.Nozzle, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	pumpID, err := stationdomain.ParseID(strings.TrimSpace(req.PumpID))
	if err != nil {
		return nil, stationdomain.ErrInvalidPump
	}
	pump, err := s.repo.FindPumpByID(ctx, s.db, tenantID, pumpID)
	if err != nil {
		return nil, err
	}
	if pump == nil {
		return nil, stationdomain.ErrInvalidPump
	}

	if req.NozzleNumber <= 0 {
		return nil, stationdomain.ErrInvalidNozzle
	}
	if !stationdomain.ValidFuelType(req.FuelType) {
		return nil, stationdomain.ErrInvalidFuelType
	}

	now := time.Now().UTC()
	nozzle := &stationdomain.Nozzle{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		PumpID:       pumpID,
		NozzleNumber: req.NozzleNumber,
		FuelType:     req.FuelType,
		Status:       stationdomain.NozzleActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertNozzle(ctx, s.db, nozzle); err != nil {
		return nil, err
	}
	return nozzle, nil
}

func (s *Service) ListNozzles(ctx context.Context, pumpID string) ([]stationdomain.Nozzle, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	var id snowflake.ID
	if strings.TrimSpace(pumpID) != "" {
		parsed, err := stationdomain.ParseID(strings.TrimSpace(pumpID))
		if err != nil {
			return nil, stationdomain.ErrInvalidPump
		}
		id = parsed
	}
	return s.repo.ListNozzles(ctx, s.db, tenantID, id)
}

func (s *Service) UpdateNozzleStatus(ctx context.Context, id string, status stationdomain.NozzleStatus) (*stationdomain.Nozzle, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, stationdomain.ErrInvalidTenant
	}

	nozzleID, err := stationdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, stationdomain.ErrInvalidID
	}

	switch status {
	case stationdomain.NozzleActive, stationdomain.NozzleInactive:
	default:
		return nil, stationdomain.ErrInvalidStatus
	}

	nozzle, err := s.repo.FindNozzleByID(ctx, s.db, tenantID, nozzleID)
	if err != nil {
		return nil, err
	}
	if nozzle == nil {
		return nil, stationdomain.ErrNotFound
	}

	nozzle.Status = status
	nozzle.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateNozzle(ctx, s.db, nozzle); err != nil {
		return nil, err
	}
	return nozzle, nil
}

func (s *Service) Resolve(ctx context.Context, tenantID, nozzleID snowflake.ID) (*stationdomain.ResolvedNozzle, error) {
	return s.repo.ResolveNozzle(ctx, s.db, tenantID, nozzleID)
}
