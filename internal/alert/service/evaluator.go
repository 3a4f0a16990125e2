package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fuelsync/fuelsync/internal/alert/domain"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	readingdomain "github.com/fuelsync/fuelsync/internal/reading/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
)

const (
	noReadingsWindow      = 24 * time.Hour
	stationInactiveWindow = 48 * time.Hour
	maintenanceOverdue    = 7 * 24 * time.Hour
	anomalyJumpFraction   = 0.20
)

type nozzleRef struct {
	NozzleID  snowflake.ID `gorm:"column:nozzle_id"`
	StationID snowflake.ID `gorm:"column:station_id"`
	FuelType  string       `gorm:"column:fuel_type"`
}

// sweep evaluates every rule for one tenant. Each finding goes through
// Raise, which suppresses same-day duplicates, so a sweep can run on any
// cadence without flooding.
func (s *Service) sweep(ctx context.Context, tenantID snowflake.ID) (*domain.SweepSummary, error) {
	summary := &domain.SweepSummary{ByType: map[string]int{}}
	now := time.Now().UTC()

	rules := []func(context.Context, snowflake.ID, time.Time, *domain.SweepSummary) error{
		s.sweepNoReadings,
		s.sweepMissingPrices,
		s.sweepCreditorsNearLimit,
		s.sweepInactiveStations,
		s.sweepStuckPumps,
		s.sweepReadingAnomalies,
		s.sweepMissingCashReports,
	}
	for _, rule := range rules {
		if err := rule(ctx, tenantID, now, summary); err != nil {
			return nil, err
		}
	}

	s.log.Info("sweep complete",
		zap.Int("raised", summary.Raised),
		zap.Int("suppressed", summary.Suppressed),
	)
	return summary, nil
}

func (s *Service) record(ctx context.Context, summary *domain.SweepSummary, req domain.RaiseRequest) error {
	alert, err := s.Raise(ctx, s.db, req)
	if err != nil {
		return err
	}
	if alert == nil {
		summary.Suppressed++
		return nil
	}
	summary.Raised++
	summary.ByType[string(req.Type)]++
	return nil
}

func (s *Service) sweepNoReadings(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var refs []nozzleRef
	err := s.db.WithContext(ctx).Raw(`
		SELECT n.id AS nozzle_id, p.station_id, n.fuel_type
		FROM nozzles n
		JOIN pumps p ON n.pump_id = p.id
		JOIN stations st ON p.station_id = st.id
		WHERE n.tenant_id = ? AND n.status = ? AND st.status = ?
		AND NOT EXISTS (
			SELECT 1 FROM nozzle_readings r
			WHERE r.nozzle_id = n.id AND r.recorded_at >= ?
		)`, tenantID, stationdomain.NozzleActive, stationdomain.StationActive, now.Add(-noReadingsWindow)).
		Scan(&refs).Error
	if err != nil {
		return err
	}

	for _, ref := range refs {
		stationID := ref.StationID
		err := s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: &stationID,
			Type:      domain.AlertNoReadings24h,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("nozzle %s has no readings in the last 24h", ref.NozzleID),
			Metadata:  map[string]interface{}{"nozzle_id": ref.NozzleID.String()},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sweepMissingPrices(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var refs []nozzleRef
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT p.station_id, n.fuel_type, MIN(n.id) AS nozzle_id
		FROM nozzles n
		JOIN pumps p ON n.pump_id = p.id
		WHERE n.tenant_id = ? AND n.status = ?
		GROUP BY p.station_id, n.fuel_type`, tenantID, stationdomain.NozzleActive).
		Scan(&refs).Error
	if err != nil {
		return err
	}

	for _, ref := range refs {
		price, err := s.priceRepo.FindAt(ctx, s.db, tenantID, ref.StationID, stationdomain.FuelType(ref.FuelType), now)
		if err != nil {
			return err
		}
		if price != nil {
			continue
		}
		stationID := ref.StationID
		err = s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: &stationID,
			Type:      domain.AlertPriceMissing,
			Severity:  domain.SeverityCritical,
			Message:   fmt.Sprintf("no current %s price for station %s", ref.FuelType, ref.StationID),
			Metadata:  map[string]interface{}{"fuel_type": ref.FuelType},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sweepCreditorsNearLimit(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var creditors []creditordomain.Creditor
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, creditordomain.CreditorActive).
		Find(&creditors).Error
	if err != nil {
		return err
	}

	for _, creditor := range creditors {
		if !creditor.CheckLimit(decimal.Zero).NearLimit {
			continue
		}
		err := s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: nil,
			Type:      domain.AlertCreditNearLimit,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("creditor %s balance %s is at or above 90%% of limit %s", creditor.PartyName, creditor.Balance, creditor.CreditLimit),
			Metadata:  map[string]interface{}{"creditor_id": creditor.ID.String()},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sweepInactiveStations(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var stations []stationdomain.Station
	err := s.db.WithContext(ctx).Raw(`
		SELECT * FROM stations s
		WHERE s.tenant_id = ? AND s.status = ?
		AND NOT EXISTS (
			SELECT 1 FROM nozzle_readings r
			WHERE r.station_id = s.id AND r.recorded_at >= ?
		)`, tenantID, stationdomain.StationActive, now.Add(-stationInactiveWindow)).
		Scan(&stations).Error
	if err != nil {
		return err
	}

	for _, station := range stations {
		stationID := station.ID
		err := s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: &stationID,
			Type:      domain.AlertStationInactive,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("station %s has no readings in the last 48h", station.Name),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sweepStuckPumps(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var pumps []stationdomain.Pump
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND updated_at < ?",
			tenantID, stationdomain.PumpMaintenance, now.Add(-maintenanceOverdue)).
		Find(&pumps).Error
	if err != nil {
		return err
	}

	for _, pump := range pumps {
		stationID := pump.StationID
		err := s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: &stationID,
			Type:      domain.AlertPumpMaintenance,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("pump %s has been in maintenance for over 7 days", pump.Name),
			Metadata:  map[string]interface{}{"pump_id": pump.ID.String()},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) sweepReadingAnomalies(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	var nozzleIDs []snowflake.ID
	err := s.db.WithContext(ctx).Model(&readingdomain.NozzleReading{}).
		Where("tenant_id = ? AND recorded_at >= ?", tenantID, now.Add(-noReadingsWindow)).
		Distinct("nozzle_id").
		Pluck("nozzle_id", &nozzleIDs).Error
	if err != nil {
		return err
	}

	jump := decimal.NewFromFloat(1 + anomalyJumpFraction)
	for _, nozzleID := range nozzleIDs {
		var last []readingdomain.NozzleReading
		err := s.db.WithContext(ctx).
			Where("tenant_id = ? AND nozzle_id = ?", tenantID, nozzleID).
			Order("recorded_at DESC").
			Limit(3).
			Find(&last).Error
		if err != nil {
			return err
		}
		if len(last) < 3 {
			continue
		}

		latestDelta := last[0].Reading.Sub(last[1].Reading)
		previousDelta := last[1].Reading.Sub(last[2].Reading)
		if previousDelta.IsPositive() && latestDelta.GreaterThan(previousDelta.Mul(jump)) {
			stationID := last[0].StationID
			err := s.record(ctx, summary, domain.RaiseRequest{
				TenantID:  tenantID,
				StationID: &stationID,
				Type:      domain.AlertReadingAnomaly,
				Severity:  domain.SeverityCritical,
				Message:   fmt.Sprintf("nozzle %s delta %s jumped more than 20%% over previous delta %s", nozzleID, latestDelta, previousDelta),
				Metadata:  map[string]interface{}{"nozzle_id": nozzleID.String()},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) sweepMissingCashReports(ctx context.Context, tenantID snowflake.ID, now time.Time, summary *domain.SweepSummary) error {
	dayStart := now.Truncate(24 * time.Hour)
	var stationIDs []snowflake.ID
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT sa.station_id FROM sales sa
		WHERE sa.tenant_id = ? AND sa.recorded_at >= ? AND sa.recorded_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM cash_reports c
			WHERE c.tenant_id = sa.tenant_id AND c.station_id = sa.station_id AND c.date = ?
		)`, tenantID, dayStart, dayStart.Add(24*time.Hour), dayStart).
		Scan(&stationIDs).Error
	if err != nil {
		return err
	}

	for _, stationID := range stationIDs {
		id := stationID
		err := s.record(ctx, summary, domain.RaiseRequest{
			TenantID:  tenantID,
			StationID: &id,
			Type:      domain.AlertCashReportMissed,
			Severity:  domain.SeverityInfo,
			Message:   fmt.Sprintf("no cash report filed today for station %s", stationID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
