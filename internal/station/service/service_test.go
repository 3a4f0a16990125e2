package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/migration"
	"github.com/fuelsync/fuelsync/internal/station/domain"
	stationrepo "github.com/fuelsync/fuelsync/internal/station/repository"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

type testEnv struct {
	svc      domain.Service
	tenantID snowflake.ID
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

	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: stationrepo.Provide()})
	return &testEnv{svc: svc, tenantID: node.Generate()}
}

func (e *testEnv) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), e.tenantID)
}

func strptr(s string) *string { return &s }

func TestStationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ctx()

	station, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{
		Name: "  Hilltop Fuels  ", Address: "12 Ridge Road",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hilltop Fuels", station.Name)
	assert.Equal(t, domain.StationActive, station.Status)

	got, err := env.svc.GetStation(ctx, station.ID.String())
	require.NoError(t, err)
	assert.Equal(t, station.ID, got.ID)

	inactive := domain.StationInactive
	updated, err := env.svc.UpdateStation(ctx, domain.UpdateStationRequest{
		ID: station.ID.String(), Name: strptr("Hilltop"), Status: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hilltop", updated.Name)
	assert.Equal(t, domain.StationInactive, updated.Status)

	stations, err := env.svc.ListStations(ctx)
	require.NoError(t, err)
	assert.Len(t, stations, 1)
}

func TestStationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ctx()

	_, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = env.svc.GetStation(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = env.svc.GetStation(ctx, "999999999999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	station, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)

	bad := domain.StationStatus("retired")
	_, err = env.svc.UpdateStation(ctx, domain.UpdateStationRequest{
		ID: station.ID.String(), Status: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = env.svc.CreateStation(context.Background(), domain.CreateStationRequest{Name: "Main"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestStationIsolatedPerTenant(t *testing.T) {
	env := newTestEnv(t)

	station, err := env.svc.CreateStation(env.ctx(), domain.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)

	otherCtx := tenantctx.WithTenantID(context.Background(), env.tenantID+1)
	_, err = env.svc.GetStation(otherCtx, station.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stations, err := env.svc.ListStations(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestPumpLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ctx()

	station, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)

	pump, err := env.svc.CreatePump(ctx, domain.CreatePumpRequest{
		StationID: station.ID.String(), Name: "Pump 1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PumpActive, pump.Status)

	_, err = env.svc.CreatePump(ctx, domain.CreatePumpRequest{
		StationID: "999999999999999999", Name: "Pump 2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStation)

	updated, err := env.svc.UpdatePumpStatus(ctx, pump.ID.String(), domain.PumpMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.PumpMaintenance, updated.Status)

	_, err = env.svc.UpdatePumpStatus(ctx, pump.ID.String(), domain.PumpStatus("broken"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	pumps, err := env.svc.ListPumps(ctx, station.ID.String())
	require.NoError(t, err)
	assert.Len(t, pumps, 1)
}

func TestNozzleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ctx()

	station, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)
	pump, err := env.svc.CreatePump(ctx, domain.CreatePumpRequest{
		StationID: station.ID.String(), Name: "Pump 1",
	})
	require.NoError(t, err)

	nozzle, err := env.svc.CreateNozzle(ctx, domain.CreateNozzleRequest{
		PumpID: pump.ID.String(), NozzleNumber: 1, FuelType: domain.FuelDiesel,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.NozzleActive, nozzle.Status)

	_, err = env.svc.CreateNozzle(ctx, domain.CreateNozzleRequest{
		PumpID: pump.ID.String(), NozzleNumber: 0, FuelType: domain.FuelPetrol,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidNozzle)

	_, err = env.svc.CreateNozzle(ctx, domain.CreateNozzleRequest{
		PumpID: pump.ID.String(), NozzleNumber: 2, FuelType: domain.FuelType("kerosene"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFuelType)

	updated, err := env.svc.UpdateNozzleStatus(ctx, nozzle.ID.String(), domain.NozzleInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.NozzleInactive, updated.Status)

	nozzles, err := env.svc.ListNozzles(ctx, pump.ID.String())
	require.NoError(t, err)
	assert.Len(t, nozzles, 1)
}

func TestResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.ctx()

	station, err := env.svc.CreateStation(ctx, domain.CreateStationRequest{Name: "Main"})
	require.NoError(t, err)
	pump, err := env.svc.CreatePump(ctx, domain.CreatePumpRequest{
		StationID: station.ID.String(), Name: "Pump 1",
	})
	require.NoError(t, err)
	nozzle, err := env.svc.CreateNozzle(ctx, domain.CreateNozzleRequest{
		PumpID: pump.ID.String(), NozzleNumber: 1, FuelType: domain.FuelPetrol,
	})
	require.NoError(t, err)

	resolved, err := env.svc.Resolve(ctx, env.tenantID, nozzle.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, station.ID, resolved.StationID)
	assert.Equal(t, domain.FuelPetrol, resolved.FuelType)

	resolved, err = env.svc.Resolve(ctx, env.tenantID, snowflake.ID(42))
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
