package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    creditordomain.Repository
	DayLock creditordomain.DayLockChecker
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    creditordomain.Repository
	genID   *snowflake.Node
	dayLock creditordomain.DayLockChecker
}

func New(p Params) creditordomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("creditor.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		dayLock: p.DayLock,
	}
}

func (s *Service) Create(ctx context.Context, req creditordomain.CreateRequest) (*creditordomain.Creditor, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}

	partyName := strings.TrimSpace(req.PartyName)
	if partyName == "" {
		return nil, creditordomain.ErrInvalidPartyName
	}
	if req.CreditLimit.IsNegative() {
		return nil, creditordomain.ErrInvalidCreditLimit
	}

	now := time.Now().UTC()
	creditor := &creditordomain.Creditor{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		PartyName:     partyName,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Address:       strings.TrimSpace(req.Address),
		CreditLimit:   req.CreditLimit.Round(2),
		Balance:       decimal.Zero,
		Status:        creditordomain.CreditorActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, creditor); err != nil {
		return nil, err
	}
	return creditor, nil
}

func (s *Service) List(ctx context.Context) ([]creditordomain.Creditor, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*creditordomain.Creditor, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}

	creditorID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, creditordomain.ErrInvalidID
	}

	creditor, err := s.repo.FindByID(ctx, s.db, tenantID, creditorID)
	if err != nil {
		return nil, err
	}
	if creditor == nil {
		return nil, creditordomain.ErrNotFound
	}
	return creditor, nil
}

func (s *Service) Update(ctx context.Context, req creditordomain.UpdateRequest) (*creditordomain.Creditor, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}

	creditorID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, creditordomain.ErrInvalidID
	}

	creditor, err := s.repo.FindByID(ctx, s.db, tenantID, creditorID)
	if err != nil {
		return nil, err
	}
	if creditor == nil {
		return nil, creditordomain.ErrNotFound
	}

	if req.PartyName != nil {
		partyName := strings.TrimSpace(*req.PartyName)
		if partyName == "" {
			return nil, creditordomain.ErrInvalidPartyName
		}
		creditor.PartyName = partyName
	}
	if req.ContactNumber != nil {
		creditor.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}
	if req.Address != nil {
		creditor.Address = strings.TrimSpace(*req.Address)
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, creditordomain.ErrInvalidCreditLimit
		}
		creditor.CreditLimit = req.CreditLimit.Round(2)
	}

	creditor.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, creditor); err != nil {
		return nil, err
	}
	return creditor, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return creditordomain.ErrInvalidTenant
	}

	creditorID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return creditordomain.ErrInvalidID
	}

	creditor, err := s.repo.FindByID(ctx, s.db, tenantID, creditorID)
	if err != nil {
		return err
	}
	if creditor == nil {
		return creditordomain.ErrNotFound
	}

	creditor.Status = creditordomain.CreditorInactive
	creditor.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, creditor)
}

func (s *Service) ApplyCreditSale(ctx context.Context, tx *gorm.DB, tenantID, creditorID snowflake.ID, amount decimal.Decimal) (creditordomain.LimitCheck, error) {
	if amount.IsNegative() {
		return creditordomain.LimitCheck{}, creditordomain.ErrInvalidAmount
	}

	creditor, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, creditorID)
	if err != nil {
		return creditordomain.LimitCheck{}, err
	}
	if creditor == nil || creditor.Status != creditordomain.CreditorActive {
		return creditordomain.LimitCheck{}, creditordomain.ErrInvalidCreditor
	}

	check := creditor.CheckLimit(amount)
	if check.Exceeded {
		return check, creditordomain.ErrCreditLimitExceeded
	}

	if err := s.repo.IncrementBalance(ctx, tx, tenantID, creditorID, amount); err != nil {
		return check, err
	}
	return check, nil
}

func (s *Service) RecordPayment(ctx context.Context, req creditordomain.RecordPaymentRequest) (*creditordomain.CreditPayment, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}

	creditorID, err := snowflake.ParseString(strings.TrimSpace(req.CreditorID))
	if err != nil || creditorID == 0 {
		return nil, creditordomain.ErrInvalidCreditor
	}
	if !req.Amount.IsPositive() {
		return nil, creditordomain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, creditordomain.ErrInvalidPayment
	}

	receivedBy, err := snowflake.ParseString(strings.TrimSpace(req.ReceivedBy))
	if err != nil {
		receivedBy = 0
	}

	now := time.Now().UTC()
	receivedAt := now
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		receivedAt = req.ReceivedAt.UTC()
	}

	payment := &creditordomain.CreditPayment{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		CreditorID:      creditorID,
		Amount:          req.Amount.Round(2),
		PaymentMethod:   method,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		ReceivedBy:      receivedBy,
		ReceivedAt:      receivedAt,
		CreatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The lock is checked against the payment's own date, not the
		// wall-clock day the request happens to arrive on.
		finalized, err := s.dayLock.IsDateFinalized(ctx, tx, tenantID, receivedAt)
		if err != nil {
			return err
		}
		if finalized {
			return creditordomain.ErrDayFinalized
		}

		creditor, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, creditorID)
		if err != nil {
			return err
		}
		if creditor == nil {
			return creditordomain.ErrInvalidCreditor
		}

		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}
		return s.repo.DecrementBalance(ctx, tx, tenantID, creditorID, payment.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("credit payment recorded",
		zap.String("creditor_id", creditorID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context, creditorID string) ([]creditordomain.CreditPayment, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, creditordomain.ErrInvalidTenant
	}

	var id snowflake.ID
	if strings.TrimSpace(creditorID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(creditorID))
		if err != nil {
			return nil, creditordomain.ErrInvalidCreditor
		}
		id = parsed
	}
	return s.repo.ListPayments(ctx, s.db, tenantID, id)
}
