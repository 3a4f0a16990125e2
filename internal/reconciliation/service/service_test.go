package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/migration"
	"github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	reconrepo "github.com/fuelsync/fuelsync/internal/reconciliation/repository"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	salerepo "github.com/fuelsync/fuelsync/internal/sale/repository"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	stationrepo "github.com/fuelsync/fuelsync/internal/station/repository"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

var day = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service

	tenantID snowflake.ID
	station  stationdomain.Station
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB: conn, Log: zap.NewNop(), GenID: node,
		Repo: reconrepo.Provide(), SaleRepo: salerepo.Provide(), StationRepo: stationrepo.Provide(),
	})

	env := &testEnv{db: conn, node: node, svc: svc, tenantID: node.Generate()}
	env.station = stationdomain.Station{
		ID: node.Generate(), TenantID: env.tenantID,
		Name: "Station One", Status: stationdomain.StationActive,
	}
	require.NoError(t, conn.Create(&env.station).Error)
	return env
}

func (e *testEnv) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), e.tenantID)
}

func (e *testEnv) addSale(t *testing.T, method saledomain.PaymentMethod, amount string, at time.Time) {
	t.Helper()
	sale := saledomain.Sale{
		ID: e.node.Generate(), TenantID: e.tenantID,
		NozzleID: e.node.Generate(), StationID: e.station.ID,
		FuelType:      stationdomain.FuelPetrol,
		Volume:        decimal.NewFromInt(1),
		FuelPrice:     decimal.RequireFromString(amount),
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: method,
		RecordedAt:    at,
	}
	require.NoError(t, e.db.Create(&sale).Error)
}

func TestRun_AggregatesPerPaymentMethod(t *testing.T) {
	env := newTestEnv(t)

	env.addSale(t, saledomain.PaymentCash, "250.50", day.Add(9*time.Hour))
	env.addSale(t, saledomain.PaymentCash, "100.25", day.Add(11*time.Hour))
	env.addSale(t, saledomain.PaymentCard, "500.00", day.Add(13*time.Hour))
	env.addSale(t, saledomain.PaymentUPI, "75.75", day.Add(15*time.Hour))
	env.addSale(t, saledomain.PaymentCredit, "1000.00", day.Add(17*time.Hour))
	// Previous day's sale must not count.
	env.addSale(t, saledomain.PaymentCash, "999.00", day.Add(-time.Hour))

	recon, err := env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)

	assert.Equal(t, "350.75", recon.CashTotal.String())
	assert.Equal(t, "500", recon.CardTotal.String())
	assert.Equal(t, "75.75", recon.UPITotal.String())
	assert.Equal(t, "1000", recon.CreditTotal.String())
	assert.Equal(t, "1926.5", recon.TotalSales.String())
	assert.True(t, recon.Finalized)
}

func TestRun_EmptyDayFinalizesWithZeroTotals(t *testing.T) {
	env := newTestEnv(t)

	recon, err := env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.True(t, recon.Finalized)
	assert.True(t, recon.TotalSales.IsZero())
}

func TestRun_SecondRunIsConflict(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)

	_, err = env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestRun_UnknownStationRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.node.Generate().String(),
		Date:      day.Format("2006-01-02"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStation)
}

func TestRun_InvalidDateRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      "15-06-2025",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestGetAndList(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Get(env.ctx(), env.station.ID.String(), day.Format("2006-01-02"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)

	got, err := env.svc.Get(env.ctx(), env.station.ID.String(), day.Format("2006-01-02"))
	require.NoError(t, err)
	assert.True(t, got.Finalized)

	list, err := env.svc.List(env.ctx(), domain.ListRequest{StationID: env.station.ID.String()})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIsDayFinalized(t *testing.T) {
	env := newTestEnv(t)

	finalized, err := env.svc.IsDayFinalized(env.ctx(), env.tenantID, env.station.ID, day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.False(t, finalized)

	_, err = env.svc.Run(env.ctx(), domain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)

	finalized, err = env.svc.IsDayFinalized(env.ctx(), env.tenantID, env.station.ID, day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.True(t, finalized)

	finalized, err = env.svc.IsDayFinalized(env.ctx(), env.tenantID, env.station.ID, day.Add(30*time.Hour))
	require.NoError(t, err)
	assert.False(t, finalized)
}
