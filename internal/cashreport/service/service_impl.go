package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/cashreport/domain"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
	"github.com/fuelsync/fuelsync/pkg/db"
	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

type Params struct {
	fx.In
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	StationRepo stationdomain.Repository
	PriceRepo   fuelpricedomain.Repository
	SaleRepo    saledomain.Repository
	ReconRepo   recondomain.Repository
	CreditorSvc creditordomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	stationRepo stationdomain.Repository
	priceRepo   fuelpricedomain.Repository
	saleRepo    saledomain.Repository
	reconRepo   recondomain.Repository
	creditorSvc creditordomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("cashreport.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		stationRepo: p.StationRepo,
		priceRepo:   p.PriceRepo,
		saleRepo:    p.SaleRepo,
		reconRepo:   p.ReconRepo,
		creditorSvc: p.CreditorSvc,
	}
}

// Create files the report and books each credit entry as a credit sale
// in the same transaction, so declared tender and on-account amounts
// land together or not at all.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.CashReport, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	stationID, err := snowflake.ParseString(req.StationID)
	if err != nil {
		return nil, domain.ErrInvalidStation
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	date = date.UTC()

	if req.CashAmount.IsNegative() || req.CardAmount.IsNegative() || req.UPIAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	actor, _ := tenantctx.ActorIDFromContext(ctx)

	var report *domain.CashReport
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		station, err := s.stationRepo.FindStationByID(ctx, tx, tenantID, stationID)
		if err != nil {
			return err
		}
		if station == nil {
			return domain.ErrInvalidStation
		}

		finalized, err := s.reconRepo.FinalizedOnDate(ctx, tx, tenantID, stationID, date)
		if err != nil {
			return err
		}
		if finalized {
			return domain.ErrDayFinalized
		}

		existing, err := s.repo.FindByStationDate(ctx, tx, tenantID, stationID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateReport
		}

		creditTotal := decimal.Zero
		for _, entry := range req.CreditEntries {
			amount, err := s.bookCreditEntry(ctx, tx, tenantID, stationID, actor, date, entry)
			if err != nil {
				return err
			}
			creditTotal = creditTotal.Add(amount)
		}

		report = &domain.CashReport{
			ID:           s.genID.Generate(),
			TenantID:     tenantID,
			StationID:    stationID,
			Date:         date,
			CashAmount:   req.CashAmount.Round(2),
			CardAmount:   req.CardAmount.Round(2),
			UPIAmount:    req.UPIAmount.Round(2),
			CreditAmount: creditTotal,
			Notes:        req.Notes,
			CreatedBy:    actor,
		}
		if err := s.repo.Insert(ctx, tx, report); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateReport
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cash report filed",
		zap.String("station_id", stationID.String()),
		zap.String("date", req.Date),
		zap.String("credit_total", report.CreditAmount.String()),
	)
	return report, nil
}

// bookCreditEntry turns one declared on-account amount into a credit
// sale: it picks a nozzle of the fuel type, prices the amount into a
// volume, and moves the creditor balance under the limit check.
func (s *Service) bookCreditEntry(
	ctx context.Context,
	tx *gorm.DB,
	tenantID, stationID, actor snowflake.ID,
	date time.Time,
	entry domain.CreditEntry,
) (decimal.Decimal, error) {
	creditorID, err := snowflake.ParseString(entry.CreditorID)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidCreditor
	}
	fuelType := stationdomain.FuelType(entry.FuelType)
	if !stationdomain.ValidFuelType(fuelType) {
		return decimal.Zero, domain.ErrInvalidFuelType
	}
	if !entry.Amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	nozzle, err := s.stationRepo.FindNozzleForFuel(ctx, tx, tenantID, stationID, fuelType)
	if err != nil {
		return decimal.Zero, err
	}
	if nozzle == nil {
		return decimal.Zero, domain.ErrNoNozzle
	}

	price, err := s.priceRepo.FindAt(ctx, tx, tenantID, stationID, fuelType, date)
	if err != nil {
		return decimal.Zero, err
	}
	if price == nil {
		return decimal.Zero, fuelpricedomain.ErrPriceMissing
	}

	amount := entry.Amount.Round(2)
	volume := amount.Div(price.Price).Round(3)

	if _, err := s.creditorSvc.ApplyCreditSale(ctx, tx, tenantID, creditorID, amount); err != nil {
		return decimal.Zero, err
	}

	sale := &saledomain.Sale{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		NozzleID:      nozzle.NozzleID,
		StationID:     stationID,
		FuelType:      fuelType,
		Volume:        volume,
		FuelPrice:     price.Price,
		Amount:        amount,
		PaymentMethod: saledomain.PaymentCredit,
		CreditorID:    &creditorID,
		CreatedBy:     actor,
		RecordedAt:    date,
	}
	if err := s.saleRepo.Insert(ctx, tx, sale); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.CashReport, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	var stationID *snowflake.ID
	if req.StationID != "" {
		id, err := snowflake.ParseString(req.StationID)
		if err != nil {
			return nil, domain.ErrInvalidStation
		}
		stationID = &id
	}

	return s.repo.List(ctx, s.db, tenantID, stationID, req.Limit)
}
