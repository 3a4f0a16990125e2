package domain

import (
	"context"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Sale, error)

	// TodayTotals is the dashboard view: aggregate of today's sales for
	// one station, computed live from the sale rows.
	TodayTotals(ctx context.Context, stationID string) (DayTotals, error)
}

type ListRequest struct {
	StationID     string        `form:"station_id" json:"station_id"`
	NozzleID      string        `form:"nozzle_id" json:"nozzle_id"`
	CreditorID    string        `form:"creditor_id" json:"creditor_id"`
	PaymentMethod PaymentMethod `form:"payment_method" json:"payment_method"`
	From          *time.Time    `form:"from" json:"from"`
	To            *time.Time    `form:"to" json:"to"`
	Limit         int           `form:"limit" json:"limit"`
}
