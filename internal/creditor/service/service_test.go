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
	"go.uber.org/zap"
	"gorm.io/gorm"

	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	creditorrepo "github.com/fuelsync/fuelsync/internal/creditor/repository"
	"github.com/fuelsync/fuelsync/internal/migration"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	reconrepo "github.com/fuelsync/fuelsync/internal/reconciliation/repository"
	reconservice "github.com/fuelsync/fuelsync/internal/reconciliation/service"
	salerepo "github.com/fuelsync/fuelsync/internal/sale/repository"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	stationrepo "github.com/fuelsync/fuelsync/internal/station/repository"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

type testEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   creditordomain.Service
	recon recondomain.Service

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
	log := zap.NewNop()

	reconSvc := reconservice.New(reconservice.Params{
		DB: conn, Log: log, GenID: node,
		Repo: reconrepo.Provide(), SaleRepo: salerepo.Provide(), StationRepo: stationrepo.Provide(),
	})
	svc := New(Params{
		DB: conn, Log: log, GenID: node,
		Repo: creditorrepo.Provide(), DayLock: reconservice.NewDayLock(reconSvc),
	})

	env := &testEnv{
		db: conn, node: node, svc: svc, recon: reconSvc,
		tenantID: node.Generate(),
	}
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

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   " ",
		CreditLimit: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, creditordomain.ErrInvalidPartyName)

	_, err = env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, creditordomain.ErrInvalidCreditLimit)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.RequireFromString("5000.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, creditordomain.CreditorActive, created.Status)
	assert.True(t, created.Balance.IsZero())
}

func TestCheckLimit(t *testing.T) {
	limit := decimal.NewFromInt(1000)

	tests := []struct {
		name      string
		balance   string
		proposed  string
		exceeded  bool
		nearLimit bool
	}{
		{name: "well under", balance: "100", proposed: "100"},
		{name: "exactly at limit", balance: "900", proposed: "100", nearLimit: true},
		{name: "over limit", balance: "900.00", proposed: "100.01", exceeded: true},
		{name: "at ninety percent", balance: "800", proposed: "100", nearLimit: true},
		{name: "just under ninety percent", balance: "800", proposed: "99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := creditordomain.Creditor{
				CreditLimit: limit,
				Balance:     decimal.RequireFromString(tt.balance),
			}
			check := c.CheckLimit(decimal.RequireFromString(tt.proposed))
			assert.Equal(t, tt.exceeded, check.Exceeded)
			assert.Equal(t, tt.nearLimit, check.NearLimit)
		})
	}
}

func TestApplyCreditSale(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	check, err := env.svc.ApplyCreditSale(env.ctx(), env.db, env.tenantID, created.ID, decimal.RequireFromString("300.00"))
	require.NoError(t, err)
	assert.False(t, check.Exceeded)

	_, err = env.svc.ApplyCreditSale(env.ctx(), env.db, env.tenantID, created.ID, decimal.RequireFromString("800.00"))
	assert.ErrorIs(t, err, creditordomain.ErrCreditLimitExceeded)

	after, err := env.svc.GetByID(env.ctx(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "300", after.Balance.String())
}

func TestApplyCreditSale_InactiveCreditorRejected(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.Deactivate(env.ctx(), created.ID.String()))

	_, err = env.svc.ApplyCreditSale(env.ctx(), env.db, env.tenantID, created.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, creditordomain.ErrInvalidCreditor)
}

func TestBalanceInvariant_RandomInterleaving(t *testing.T) {
	env := newTestEnv(t)
	rng := rand.New(rand.NewSource(7))
	limit := decimal.NewFromInt(1000)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: limit,
	})
	require.NoError(t, err)

	// Replay the ledger alongside the service and compare after every
	// operation.
	expected := decimal.Zero
	salesApplied, paymentsApplied := 0, 0

	for i := 0; i < 80; i++ {
		if rng.Intn(2) == 0 {
			amount := decimal.NewFromInt(rng.Int63n(16)*25 + 25) // 25..400
			_, err := env.svc.ApplyCreditSale(env.ctx(), env.db, env.tenantID, created.ID, amount)
			if expected.Add(amount).GreaterThan(limit) {
				require.ErrorIs(t, err, creditordomain.ErrCreditLimitExceeded, "step %d", i)
			} else {
				require.NoError(t, err, "step %d", i)
				expected = expected.Add(amount)
				salesApplied++
			}
		} else {
			amount := decimal.NewFromInt(rng.Int63n(12)*25 + 25) // 25..300
			_, err := env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
				CreditorID:    created.ID.String(),
				Amount:        amount,
				PaymentMethod: "bank_transfer",
			})
			require.NoError(t, err, "step %d", i)
			expected = expected.Sub(amount)
			paymentsApplied++
		}

		after, err := env.svc.GetByID(env.ctx(), created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, expected.String(), after.Balance.String(), "step %d", i)
		assert.True(t, after.Balance.LessThanOrEqual(limit), "step %d: balance above limit", i)
	}

	require.Positive(t, salesApplied)
	require.Positive(t, paymentsApplied)

	payments, err := env.svc.ListPayments(env.ctx(), created.ID.String())
	require.NoError(t, err)
	assert.Len(t, payments, paymentsApplied)
}

func TestRecordPayment_ReducesBalance(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	_, err = env.svc.ApplyCreditSale(env.ctx(), env.db, env.tenantID, created.ID, decimal.RequireFromString("500.00"))
	require.NoError(t, err)

	payment, err := env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    created.ID.String(),
		Amount:        decimal.RequireFromString("200.00"),
		PaymentMethod: "cash",
		ReceivedBy:    env.node.Generate().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "200", payment.Amount.String())

	after, err := env.svc.GetByID(env.ctx(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "300", after.Balance.String())

	payments, err := env.svc.ListPayments(env.ctx(), created.ID.String())
	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestRecordPayment_RejectedOnFinalizedDay(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(env.ctx(), creditordomain.CreateRequest{
		PartyName:   "Fleet Co",
		CreditLimit: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	_, err = env.recon.Run(env.ctx(), recondomain.RunRequest{
		StationID: env.station.ID.String(),
		Date:      day.Format("2006-01-02"),
	})
	require.NoError(t, err)

	receivedAt := day.Add(14 * time.Hour)
	_, err = env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    created.ID.String(),
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "cash",
		ReceivedAt:    &receivedAt,
	})
	assert.ErrorIs(t, err, creditordomain.ErrDayFinalized)

	// A payment dated on a still-open day is fine even though another
	// day is locked.
	openDay := day.Add(48 * time.Hour)
	_, err = env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    created.ID.String(),
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "cash",
		ReceivedAt:    &openDay,
	})
	require.NoError(t, err)
}

func TestRecordPayment_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    "not-a-number",
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, creditordomain.ErrInvalidCreditor)

	creditorID := env.node.Generate().String()
	_, err = env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    creditorID,
		Amount:        decimal.Zero,
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, creditordomain.ErrInvalidAmount)

	_, err = env.svc.RecordPayment(env.ctx(), creditordomain.RecordPaymentRequest{
		CreditorID:    creditorID,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "",
	})
	assert.ErrorIs(t, err, creditordomain.ErrInvalidPayment)
}
