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

	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	fuelpricerepo "github.com/fuelsync/fuelsync/internal/fuelprice/repository"
	"github.com/fuelsync/fuelsync/internal/migration"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

type testEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  fuelpricedomain.Service

	tenantID  snowflake.ID
	stationID snowflake.ID
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
		DB: conn, Log: zap.NewNop(), GenID: node, Repo: fuelpricerepo.Provide(),
	})

	return &testEnv{
		db: conn, node: node, svc: svc,
		tenantID:  node.Generate(),
		stationID: node.Generate(),
	}
}

func (e *testEnv) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), e.tenantID)
}

func (e *testEnv) create(t *testing.T, price string, validFrom time.Time) *fuelpricedomain.FuelPrice {
	t.Helper()
	row, err := e.svc.Create(e.ctx(), fuelpricedomain.CreateRequest{
		StationID: e.stationID.String(),
		FuelType:  stationdomain.FuelPetrol,
		Price:     decimal.RequireFromString(price),
		ValidFrom: &validFrom,
	})
	require.NoError(t, err)
	return row
}

func TestCreate_ClosesPreviousInterval(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day5 := day1.Add(4 * 24 * time.Hour)

	first := env.create(t, "100.00", day1)
	env.create(t, "105.00", day5)

	var reloaded fuelpricedomain.FuelPrice
	require.NoError(t, env.db.First(&reloaded, "id = ?", first.ID).Error)
	require.NotNil(t, reloaded.ValidTo)
	assert.True(t, reloaded.ValidTo.Equal(day5))
}

func TestCreate_BackdatedIntervalRejected(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day5 := day1.Add(4 * 24 * time.Hour)

	env.create(t, "100.00", day5)

	_, err := env.svc.Create(env.ctx(), fuelpricedomain.CreateRequest{
		StationID: env.stationID.String(),
		FuelType:  stationdomain.FuelPetrol,
		Price:     decimal.RequireFromString("95.00"),
		ValidFrom: &day1,
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceBackdated)

	// Starting at the same instant as the existing interval is no better.
	_, err = env.svc.Create(env.ctx(), fuelpricedomain.CreateRequest{
		StationID: env.stationID.String(),
		FuelType:  stationdomain.FuelPetrol,
		Price:     decimal.RequireFromString("95.00"),
		ValidFrom: &day5,
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceBackdated)

	// The original interval is untouched and still the only one.
	var rows []fuelpricedomain.FuelPrice
	require.NoError(t, env.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ValidTo)
	assert.Equal(t, "100", rows[0].Price.String())
}

func TestGetPriceAt_SelectsCoveringInterval(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day5 := day1.Add(4 * 24 * time.Hour)

	env.create(t, "100.00", day1)
	env.create(t, "105.00", day5)

	old, err := env.svc.GetPriceAt(env.ctx(), env.tenantID, env.stationID, stationdomain.FuelPetrol, day1.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "100", old.Price.String())

	current, err := env.svc.GetPriceAt(env.ctx(), env.tenantID, env.stationID, stationdomain.FuelPetrol, day5.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "105", current.Price.String())

	// Before any interval started.
	_, err = env.svc.GetPriceAt(env.ctx(), env.tenantID, env.stationID, stationdomain.FuelPetrol, day1.Add(-time.Minute))
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceMissing)
}

func TestGetPriceAt_BoundaryBelongsToNewInterval(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day5 := day1.Add(4 * 24 * time.Hour)

	env.create(t, "100.00", day1)
	env.create(t, "105.00", day5)

	at, err := env.svc.GetPriceAt(env.ctx(), env.tenantID, env.stationID, stationdomain.FuelPetrol, day5)
	require.NoError(t, err)
	assert.Equal(t, "105", at.Price.String())
}

func TestGetPriceAt_IsolatedPerFuelType(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	env.create(t, "100.00", day1)

	_, err := env.svc.GetPriceAt(env.ctx(), env.tenantID, env.stationID, stationdomain.FuelDiesel, day1.Add(time.Hour))
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceMissing)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(env.ctx(), fuelpricedomain.CreateRequest{
		StationID: "nope",
		FuelType:  stationdomain.FuelPetrol,
		Price:     decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrInvalidStation)

	_, err = env.svc.Create(env.ctx(), fuelpricedomain.CreateRequest{
		StationID: env.stationID.String(),
		FuelType:  "kerosene",
		Price:     decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrInvalidFuelType)

	_, err = env.svc.Create(env.ctx(), fuelpricedomain.CreateRequest{
		StationID: env.stationID.String(),
		FuelType:  stationdomain.FuelPetrol,
		Price:     decimal.Zero,
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrInvalidPrice)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	row := env.create(t, "100.00", day1)
	require.NoError(t, env.svc.Delete(env.ctx(), row.ID.String()))

	err := env.svc.Delete(env.ctx(), row.ID.String())
	assert.ErrorIs(t, err, fuelpricedomain.ErrNotFound)
}
