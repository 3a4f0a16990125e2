package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AlertType string

const (
	AlertNoReadings24h    AlertType = "no_readings_24h"
	AlertPriceMissing     AlertType = "price_missing"
	AlertCreditNearLimit  AlertType = "credit_near_limit"
	AlertStationInactive  AlertType = "station_inactive"
	AlertPumpMaintenance  AlertType = "pump_maintenance_overdue"
	AlertReadingAnomaly   AlertType = "reading_delta_anomaly"
	AlertCashReportMissed AlertType = "cash_report_missing"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is an operational finding from a rule sweep or an ingest side
// effect. StationID is nil for tenant-wide findings.
type Alert struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID      `json:"tenant_id" gorm:"column:tenant_id;not null;index:ix_alerts_tenant_type,priority:1"`
	StationID      *snowflake.ID     `json:"station_id,omitempty" gorm:"index"`
	Type           AlertType         `json:"type" gorm:"type:varchar(40);not null;index:ix_alerts_tenant_type,priority:2"`
	Severity       Severity          `json:"severity" gorm:"type:varchar(16);not null"`
	Message        string            `json:"message" gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Acknowledged   bool              `json:"acknowledged" gorm:"not null;default:false"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }
