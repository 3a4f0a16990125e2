package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() stationdomain.Repository {
	return &repo{}
}

func (r *repo) InsertStation(ctx context.Context, db *gorm.DB, station *stationdomain.Station) error {
	return db.WithContext(ctx).Create(station).Error
}

func (r *repo) UpdateStation(ctx context.Context, db *gorm.DB, station *stationdomain.Station) error {
	return db.WithContext(ctx).
		Model(&stationdomain.Station{}).
		Where("tenant_id = ? AND id = ?", station.TenantID, station.ID).
		Updates(map[string]any{
			"name":       station.Name,
			"address":    station.Address,
			"status":     station.Status,
			"updated_at": station.UpdatedAt,
		}).Error
}

func (r *repo) FindStationByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*stationdomain.Station, error) {
	var station stationdomain.Station
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&station).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (r *repo) ListStations(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]stationdomain.Station, error) {
	var stations []stationdomain.Station
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&stations).Error
	return stations, err
}

func (r *repo) InsertPump(ctx context.Context, db *gorm.DB, pump *stationdomain.Pump) error {
	return db.WithContext(ctx).Create(pump).Error
}

func (r *repo) UpdatePump(ctx context.Context, db *gorm.DB, pump *stationdomain.Pump) error {
	return db.WithContext(ctx).
		Model(&stationdomain.Pump{}).
		Where("tenant_id = ? AND id = ?", pump.TenantID, pump.ID).
		Updates(map[string]any{
			"name":       pump.Name,
			"status":     pump.Status,
			"updated_at": pump.UpdatedAt,
		}).Error
}

func (r *repo) FindPumpByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*stationdomain.Pump, error) {
	var pump stationdomain.Pump
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&pump).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pump, nil
}

func (r *repo) ListPumps(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID) ([]stationdomain.Pump, error) {
	var pumps []stationdomain.Pump
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if stationID != 0 {
		stmt = stmt.Where("station_id = ?", stationID)
	}
	err := stmt.Order("name ASC").Find(&pumps).Error
	return pumps, err
}

func (r *repo) InsertNozzle(ctx context.Context, db *gorm.DB, nozzle *stationdomain.Nozzle) error {
	return db.WithContext(ctx).Create(nozzle).Error
}

func (r *repo) UpdateNozzle(ctx context.Context, db *gorm.DB, nozzle *stationdomain.Nozzle) error {
	return db.WithContext(ctx).
		Model(&stationdomain.Nozzle{}).
		Where("tenant_id = ? AND id = ?", nozzle.TenantID, nozzle.ID).
		Updates(map[string]any{
			"status":     nozzle.Status,
			"updated_at": nozzle.UpdatedAt,
		}).Error
}

func (r *repo) FindNozzleByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*stationdomain.Nozzle, error) {
	var nozzle stationdomain.Nozzle
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&nozzle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &nozzle, nil
}

func (r *repo) ListNozzles(ctx context.Context, db *gorm.DB, tenantID, pumpID snowflake.ID) ([]stationdomain.Nozzle, error) {
	var nozzles []stationdomain.Nozzle
	stmt := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if pumpID != 0 {
		stmt = stmt.Where("pump_id = ?", pumpID)
	}
	err := stmt.Order("nozzle_number ASC").Find(&nozzles).Error
	return nozzles, err
}

func (r *repo) ResolveNozzle(ctx context.Context, db *gorm.DB, tenantID, nozzleID snowflake.ID) (*stationdomain.ResolvedNozzle, error) {
	var resolved stationdomain.ResolvedNozzle
	err := db.WithContext(ctx).Raw(
		`SELECT n.id AS nozzle_id, p.station_id AS station_id, n.fuel_type, n.status
		 FROM nozzles n
		 JOIN pumps p ON n.pump_id = p.id
		 WHERE n.id = ? AND n.tenant_id = ?`,
		nozzleID,
		tenantID,
	).Scan(&resolved).Error
	if err != nil {
		return nil, err
	}
	if resolved.NozzleID == 0 {
		return nil, nil
	}
	return &resolved, nil
}

func (r *repo) FindNozzleForFuel(ctx context.Context, db *gorm.DB, tenantID, stationID snowflake.ID, fuelType stationdomain.FuelType) (*stationdomain.ResolvedNozzle, error) {
	var resolved stationdomain.ResolvedNozzle
	err := db.WithContext(ctx).Raw(
		`SELECT n.id AS nozzle_id, p.station_id AS station_id, n.fuel_type, n.status
		 FROM nozzles n
		 JOIN pumps p ON n.pump_id = p.id
		 WHERE p.station_id = ? AND n.tenant_id = ? AND n.fuel_type = ? AND n.status = ?
		 ORDER BY n.id LIMIT 1`,
		stationID,
		tenantID,
		fuelType,
		stationdomain.NozzleActive,
	).Scan(&resolved).Error
	if err != nil {
		return nil, err
	}
	if resolved.NozzleID == 0 {
		return nil, nil
	}
	return &resolved, nil
}
