package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
)

const (
	demoTenantID    = snowflake.ID(1)
	demoStationName = "Demo Station"
)

// EnsureDemoData seeds a demo station with one pump, two nozzles,
// current prices, and one creditor so a fresh install can take readings
// immediately. Idempotent: a second start finds the station and stops.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing stationdomain.Station
		err := tx.Where("tenant_id = ? AND name = ?", demoTenantID, demoStationName).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()

		station := stationdomain.Station{
			ID:        node.Generate(),
			TenantID:  demoTenantID,
			Name:      demoStationName,
			Address:   "1 Demo Road",
			Status:    stationdomain.StationActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&station).Error; err != nil {
			return err
		}

		pump := stationdomain.Pump{
			ID:        node.Generate(),
			TenantID:  demoTenantID,
			StationID: station.ID,
			Name:      "Pump 1",
			Status:    stationdomain.PumpActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&pump).Error; err != nil {
			return err
		}

		nozzles := []stationdomain.Nozzle{
			{
				ID:           node.Generate(),
				TenantID:     demoTenantID,
				PumpID:       pump.ID,
				NozzleNumber: 1,
				FuelType:     stationdomain.FuelPetrol,
				Status:       stationdomain.NozzleActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			{
				ID:           node.Generate(),
				TenantID:     demoTenantID,
				PumpID:       pump.ID,
				NozzleNumber: 2,
				FuelType:     stationdomain.FuelDiesel,
				Status:       stationdomain.NozzleActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
		}
		if err := tx.Create(&nozzles).Error; err != nil {
			return err
		}

		prices := []fuelpricedomain.FuelPrice{
			{
				ID:        node.Generate(),
				TenantID:  demoTenantID,
				StationID: station.ID,
				FuelType:  stationdomain.FuelPetrol,
				Price:     decimal.RequireFromString("102.50"),
				ValidFrom: now,
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:        node.Generate(),
				TenantID:  demoTenantID,
				StationID: station.ID,
				FuelType:  stationdomain.FuelDiesel,
				Price:     decimal.RequireFromString("89.75"),
				ValidFrom: now,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		if err := tx.Create(&prices).Error; err != nil {
			return err
		}

		creditor := creditordomain.Creditor{
			ID:          node.Generate(),
			TenantID:    demoTenantID,
			PartyName:   "Demo Transport Co",
			CreditLimit: decimal.NewFromInt(50000),
			Balance:     decimal.Zero,
			Status:      creditordomain.CreditorActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&creditor).Error
	})
}
