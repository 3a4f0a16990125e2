package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	alertrepo "github.com/fuelsync/fuelsync/internal/alert/repository"
	alertservice "github.com/fuelsync/fuelsync/internal/alert/service"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	creditorrepo "github.com/fuelsync/fuelsync/internal/creditor/repository"
	creditorservice "github.com/fuelsync/fuelsync/internal/creditor/service"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	fuelpricerepo "github.com/fuelsync/fuelsync/internal/fuelprice/repository"
	"github.com/fuelsync/fuelsync/internal/migration"
	"github.com/fuelsync/fuelsync/internal/observability/metrics"
	"github.com/fuelsync/fuelsync/internal/reading/domain"
	readingrepo "github.com/fuelsync/fuelsync/internal/reading/repository"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	reconrepo "github.com/fuelsync/fuelsync/internal/reconciliation/repository"
	reconservice "github.com/fuelsync/fuelsync/internal/reconciliation/service"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	salerepo "github.com/fuelsync/fuelsync/internal/sale/repository"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	stationrepo "github.com/fuelsync/fuelsync/internal/station/repository"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

var baseTime = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db     *gorm.DB
	node   *snowflake.Node
	svc    domain.Service
	recon  recondomain.Service
	meters *sdkmetric.ManualReader

	tenantID snowflake.ID
	station  stationdomain.Station
	nozzle   stationdomain.Nozzle
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
	log := zap.NewNop()

	stationRepo := stationrepo.Provide()
	priceRepo := fuelpricerepo.Provide()
	saleRepo := salerepo.Provide()
	reconRepo := reconrepo.Provide()
	alertRepo := alertrepo.Provide()
	creditorRepo := creditorrepo.Provide()
	readingRepo := readingrepo.Provide()

	reconSvc := reconservice.New(reconservice.Params{
		DB: conn, Log: log, GenID: node,
		Repo: reconRepo, SaleRepo: saleRepo, StationRepo: stationRepo,
	})
	creditorSvc := creditorservice.New(creditorservice.Params{
		DB: conn, Log: log, GenID: node,
		Repo: creditorRepo, DayLock: reconservice.NewDayLock(reconSvc),
	})
	alertSvc := alertservice.New(alertservice.Params{
		DB: conn, Log: log, GenID: node,
		Repo: alertRepo, PriceRepo: priceRepo,
	})

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	appMetrics, err := metrics.New(metrics.Config{ServiceName: "fuelsync-test"}, meterProvider)
	require.NoError(t, err)

	svc := New(Params{
		DB: conn, Log: log, GenID: node,
		Repo:        readingRepo,
		StationRepo: stationRepo,
		PriceRepo:   priceRepo,
		SaleRepo:    saleRepo,
		ReconRepo:   reconRepo,
		CreditorSvc: creditorSvc,
		AlertSvc:    alertSvc,
		Metrics:     appMetrics,
	})

	env := &testEnv{
		db:       conn,
		node:     node,
		svc:      svc,
		recon:    reconSvc,
		meters:   reader,
		tenantID: node.Generate(),
	}

	env.station = stationdomain.Station{
		ID: node.Generate(), TenantID: env.tenantID,
		Name: "Station One", Status: stationdomain.StationActive,
	}
	require.NoError(t, conn.Create(&env.station).Error)

	pump := stationdomain.Pump{
		ID: node.Generate(), TenantID: env.tenantID, StationID: env.station.ID,
		Name: "Pump 1", Status: stationdomain.PumpActive,
	}
	require.NoError(t, conn.Create(&pump).Error)

	env.nozzle = stationdomain.Nozzle{
		ID: node.Generate(), TenantID: env.tenantID, PumpID: pump.ID,
		NozzleNumber: 1, FuelType: stationdomain.FuelPetrol,
		Status: stationdomain.NozzleActive,
	}
	require.NoError(t, conn.Create(&env.nozzle).Error)

	env.addPrice(t, stationdomain.FuelPetrol, "102.50", baseTime.Add(-time.Hour))
	return env
}

func (e *testEnv) ctx() context.Context {
	return tenantctx.WithTenantID(context.Background(), e.tenantID)
}

func (e *testEnv) addPrice(t *testing.T, fuelType stationdomain.FuelType, price string, validFrom time.Time) {
	t.Helper()
	row := fuelpricedomain.FuelPrice{
		ID: e.node.Generate(), TenantID: e.tenantID, StationID: e.station.ID,
		FuelType: fuelType, Price: decimal.RequireFromString(price), ValidFrom: validFrom,
	}
	require.NoError(t, e.db.Create(&row).Error)
}

func (e *testEnv) addCreditor(t *testing.T, limit, balance string) creditordomain.Creditor {
	t.Helper()
	row := creditordomain.Creditor{
		ID: e.node.Generate(), TenantID: e.tenantID,
		PartyName:   "Fleet Co",
		CreditLimit: decimal.RequireFromString(limit),
		Balance:     decimal.RequireFromString(balance),
		Status:      creditordomain.CreditorActive,
	}
	require.NoError(t, e.db.Create(&row).Error)
	return row
}

func (e *testEnv) submit(t *testing.T, reading string, at time.Time) *domain.SubmitResult {
	t.Helper()
	res, err := e.svc.Submit(e.ctx(), domain.SubmitRequest{
		NozzleID:      e.nozzle.ID.String(),
		Reading:       decimal.RequireFromString(reading),
		RecordedAt:    at.Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(model).Count(&count).Error)
	return count
}

func TestSubmit_DerivesSaleFromDelta(t *testing.T) {
	env := newTestEnv(t)

	first := env.submit(t, "100.000", baseTime)
	assert.Equal(t, "100", first.Volume.String())
	assert.Equal(t, "10250", first.Amount.String())

	second := env.submit(t, "150.500", baseTime.Add(time.Hour))
	assert.Equal(t, "50.5", second.Volume.String())
	assert.Equal(t, "5176.25", second.Amount.String())
	assert.Equal(t, "102.5", second.FuelPrice.String())

	var sale saledomain.Sale
	saleID, err := snowflake.ParseString(second.SaleID)
	require.NoError(t, err)
	require.NoError(t, env.db.First(&sale, "id = ?", saleID).Error)
	assert.Equal(t, saledomain.PaymentCash, sale.PaymentMethod)
	require.NotNil(t, sale.ReadingID)
	assert.Equal(t, second.ReadingID, sale.ReadingID.String())
}

func TestSubmit_ZeroDeltaStillProducesSale(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "200.000", baseTime)
	res := env.submit(t, "200.000", baseTime.Add(time.Hour))

	assert.True(t, res.Volume.IsZero())
	assert.True(t, res.Amount.IsZero())
	assert.Equal(t, int64(2), env.countRows(t, &saledomain.Sale{}))
}

func TestSubmit_CountsAcceptedReadingsByFuelType(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "100.000", baseTime)

	var data metricdata.ResourceMetrics
	require.NoError(t, env.meters.Collect(context.Background(), &data))

	var sum *metricdata.Sum[int64]
	for _, scope := range data.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == "fuelsync_readings_accepted_total" {
				s := m.Data.(metricdata.Sum[int64])
				sum = &s
			}
		}
	}
	require.NotNil(t, sum, "accepted counter not recorded")
	require.Len(t, sum.DataPoints, 1)
	dp := sum.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)
	fuelType, ok := dp.Attributes.Value(attribute.Key("fuel_type"))
	require.True(t, ok)
	assert.Equal(t, string(stationdomain.FuelPetrol), fuelType.AsString())
}

func TestSubmit_RejectsNonMonotonicReading(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "150.500", baseTime)

	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("140.000"),
		RecordedAt:    baseTime.Add(time.Hour).Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNonMonotonic)
	assert.Equal(t, int64(1), env.countRows(t, &domain.NozzleReading{}))
	assert.Equal(t, int64(1), env.countRows(t, &saledomain.Sale{}))
}

func TestSubmit_RejectsBackdatedReading(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "100.000", baseTime)
	env.submit(t, "150.000", baseTime.Add(2*time.Hour))

	// Splicing a reading between two accepted ones would rebill litres
	// the later reading's sale already covers.
	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("120.000"),
		RecordedAt:    baseTime.Add(time.Hour).Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNonMonotonic)

	// A backdated value above the latest is just as inconsistent.
	_, err = env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("160.000"),
		RecordedAt:    baseTime.Add(time.Hour).Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNonMonotonic)

	assert.Equal(t, int64(2), env.countRows(t, &domain.NozzleReading{}))

	// Billed volume still telescopes to the meter's final value.
	var sales []saledomain.Sale
	require.NoError(t, env.db.Find(&sales).Error)
	require.Len(t, sales, 2)
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Volume)
	}
	assert.Equal(t, "150", total.String())
}

func TestSubmit_MissingPriceRollsBackReading(t *testing.T) {
	env := newTestEnv(t)

	// Diesel nozzle with no diesel price configured.
	diesel := stationdomain.Nozzle{
		ID: env.node.Generate(), TenantID: env.tenantID, PumpID: env.nozzle.PumpID,
		NozzleNumber: 2, FuelType: stationdomain.FuelDiesel,
		Status: stationdomain.NozzleActive,
	}
	require.NoError(t, env.db.Create(&diesel).Error)

	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      diesel.ID.String(),
		Reading:       decimal.RequireFromString("50.000"),
		RecordedAt:    baseTime.Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceMissing)

	// The whole transaction rolled back: no reading, no sale.
	assert.Equal(t, int64(0), env.countRows(t, &domain.NozzleReading{}))
	assert.Equal(t, int64(0), env.countRows(t, &saledomain.Sale{}))
}

func TestSubmit_StalePriceRejected(t *testing.T) {
	env := newTestEnv(t)

	// The only petrol price is 8 days old at submission time.
	stale := baseTime.Add(8 * 24 * time.Hour)
	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("10.000"),
		RecordedAt:    stale.Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, fuelpricedomain.ErrPriceOutdated)
	assert.Equal(t, int64(0), env.countRows(t, &domain.NozzleReading{}))
}

func TestSubmit_CreditSaleMovesBalance(t *testing.T) {
	env := newTestEnv(t)
	creditor := env.addCreditor(t, "1000.00", "0")

	res, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("2.000"),
		RecordedAt:    baseTime.Format(time.RFC3339),
		PaymentMethod: "credit",
		CreditorID:    creditor.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "205", res.Amount.String())
	assert.False(t, res.NearLimit)

	var after creditordomain.Creditor
	require.NoError(t, env.db.First(&after, "id = ?", creditor.ID).Error)
	assert.Equal(t, "205", after.Balance.String())
}

func TestSubmit_CreditLimitExceededRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	creditor := env.addCreditor(t, "100.00", "0")

	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("2.000"), // 205.00, over the 100 limit
		RecordedAt:    baseTime.Format(time.RFC3339),
		PaymentMethod: "credit",
		CreditorID:    creditor.ID.String(),
	})
	assert.ErrorIs(t, err, creditordomain.ErrCreditLimitExceeded)

	assert.Equal(t, int64(0), env.countRows(t, &domain.NozzleReading{}))
	assert.Equal(t, int64(0), env.countRows(t, &saledomain.Sale{}))

	var after creditordomain.Creditor
	require.NoError(t, env.db.First(&after, "id = ?", creditor.ID).Error)
	assert.True(t, after.Balance.IsZero())
}

func TestSubmit_NearLimitRaisesAlertButAllowsSale(t *testing.T) {
	env := newTestEnv(t)
	creditor := env.addCreditor(t, "1000.00", "850.00")

	res, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("1.000"), // 102.50 -> balance 952.50
		RecordedAt:    baseTime.Format(time.RFC3339),
		PaymentMethod: "credit",
		CreditorID:    creditor.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, res.NearLimit)

	var alerts []alertdomain.Alert
	require.NoError(t, env.db.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, alertdomain.AlertCreditNearLimit, alerts[0].Type)
	require.NotNil(t, alerts[0].StationID)
	assert.Equal(t, env.station.ID, *alerts[0].StationID)
}

func TestSubmit_CreditRequiresCreditor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("10.000"),
		PaymentMethod: "credit",
	})
	assert.ErrorIs(t, err, domain.ErrCreditorRequired)
}

func TestSubmit_UnknownNozzleRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.node.Generate().String(),
		Reading:       decimal.RequireFromString("10.000"),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestSubmit_FinalizedDayRejected(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "100.000", baseTime)

	_, err := env.recon.Run(env.ctx(), recondomain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      baseTime.Format("2006-01-02"),
	})
	require.NoError(t, err)

	_, err = env.svc.Submit(env.ctx(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("110.000"),
		RecordedAt:    baseTime.Add(2 * time.Hour).Format(time.RFC3339),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrDayFinalized)
}

func TestCanSubmit(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown nozzle", func(t *testing.T) {
		res, err := env.svc.CanSubmit(env.ctx(), env.node.Generate().String())
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, "nozzle_not_found", res.Reason)
	})

	t.Run("inactive nozzle", func(t *testing.T) {
		idle := stationdomain.Nozzle{
			ID: env.node.Generate(), TenantID: env.tenantID, PumpID: env.nozzle.PumpID,
			NozzleNumber: 3, FuelType: stationdomain.FuelPetrol,
			Status: stationdomain.NozzleInactive,
		}
		require.NoError(t, env.db.Create(&idle).Error)

		res, err := env.svc.CanSubmit(env.ctx(), idle.ID.String())
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, "nozzle_inactive", res.Reason)
	})

	t.Run("allowed with previous reading", func(t *testing.T) {
		// CanSubmit evaluates against the wall clock, so it needs a
		// price that is current right now.
		env.addPrice(t, stationdomain.FuelPetrol, "104.00", time.Now().UTC().Add(-2*time.Hour))
		env.submit(t, "100.000", time.Now().UTC().Add(-time.Hour))

		res, err := env.svc.CanSubmit(env.ctx(), env.nozzle.ID.String())
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		require.NotNil(t, res.PreviousReading)
		assert.Equal(t, "100", res.PreviousReading.String())
	})
}

func TestCanSubmit_PriceMissing(t *testing.T) {
	env := newTestEnv(t)

	diesel := stationdomain.Nozzle{
		ID: env.node.Generate(), TenantID: env.tenantID, PumpID: env.nozzle.PumpID,
		NozzleNumber: 2, FuelType: stationdomain.FuelDiesel,
		Status: stationdomain.NozzleActive,
	}
	require.NoError(t, env.db.Create(&diesel).Error)

	res, err := env.svc.CanSubmit(env.ctx(), diesel.ID.String())
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, "price_missing", res.Reason)
}

func TestList_ComputesVolumes(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, "100.000", baseTime)
	env.submit(t, "150.500", baseTime.Add(time.Hour))

	rows, err := env.svc.List(env.ctx(), domain.ListRequest{
		NozzleID: env.nozzle.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "50.5", rows[0].Volume.String())
	require.NotNil(t, rows[0].PreviousReading)
	assert.Equal(t, "100", rows[0].PreviousReading.String())
	assert.Equal(t, "100", rows[1].Volume.String())
	assert.Nil(t, rows[1].PreviousReading)
}

func TestUpdate_RejectedOnceSaleExists(t *testing.T) {
	env := newTestEnv(t)

	res := env.submit(t, "100.000", baseTime)

	newValue := decimal.RequireFromString("120.000")
	_, err := env.svc.Update(env.ctx(), res.ReadingID, domain.UpdateRequest{
		Reading: &newValue,
	})
	assert.ErrorIs(t, err, domain.ErrReadingHasSale)
}

func TestSubmit_MonotonicityOverRandomSequence(t *testing.T) {
	env := newTestEnv(t)
	rng := rand.New(rand.NewSource(42))

	last := int64(1000)
	env.submit(t, decimal.NewFromInt(last).String(), baseTime)
	accepted := 1

	for i := 1; i <= 40; i++ {
		candidate := last + rng.Int63n(70) - 20 // can step backwards
		at := baseTime.Add(time.Duration(i) * time.Minute)
		_, err := env.svc.Submit(env.ctx(), domain.SubmitRequest{
			NozzleID:      env.nozzle.ID.String(),
			Reading:       decimal.NewFromInt(candidate),
			RecordedAt:    at.Format(time.RFC3339),
			PaymentMethod: "cash",
		})
		if candidate >= last {
			require.NoError(t, err, "step %d: %d after %d", i, candidate, last)
			last = candidate
			accepted++
		} else {
			require.ErrorIs(t, err, domain.ErrNonMonotonic, "step %d: %d after %d", i, candidate, last)
		}
	}

	assert.Equal(t, int64(accepted), env.countRows(t, &domain.NozzleReading{}))
	assert.Equal(t, int64(accepted), env.countRows(t, &saledomain.Sale{}))

	// the accepted volumes telescope to the meter's final value
	var sales []saledomain.Sale
	require.NoError(t, env.db.Find(&sales).Error)
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Volume)
	}
	assert.Equal(t, decimal.NewFromInt(last).String(), total.String())
}

func TestSubmit_RequiresTenant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), domain.SubmitRequest{
		NozzleID:      env.nozzle.ID.String(),
		Reading:       decimal.RequireFromString("10.000"),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}
