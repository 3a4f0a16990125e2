package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	"github.com/fuelsync/fuelsync/internal/reconciliation/domain"
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
	SaleRepo    saledomain.Repository
	StationRepo stationdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	saleRepo    saledomain.Repository
	stationRepo stationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reconciliation.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		saleRepo:    p.SaleRepo,
		stationRepo: p.StationRepo,
	}
}

// NewDayLock exposes the service as the creditor module's day-lock
// dependency.
func NewDayLock(svc domain.Service) creditordomain.DayLockChecker {
	return svc.(creditordomain.DayLockChecker)
}

// Run aggregates the station's sales for the given date and writes the
// finalized reconciliation row in a single transaction. Re-running a
// finalized day fails with ErrAlreadyFinalized.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (*domain.DayReconciliation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	stationID, err := snowflake.ParseString(req.StationID)
	if err != nil {
		return nil, domain.ErrInvalidStation
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	var recon *domain.DayReconciliation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		station, err := s.stationRepo.FindStationByID(ctx, tx, tenantID, stationID)
		if err != nil {
			return err
		}
		if station == nil {
			return domain.ErrInvalidStation
		}

		existing, err := s.repo.FindByStationDate(ctx, tx, tenantID, stationID, date)
		if err != nil {
			return err
		}
		if existing != nil && existing.Finalized {
			return domain.ErrAlreadyFinalized
		}

		totals, err := s.saleRepo.TotalsForStationDate(ctx, tx, tenantID, stationID, date)
		if err != nil {
			return err
		}

		recon = &domain.DayReconciliation{
			ID:          s.genID.Generate(),
			TenantID:    tenantID,
			StationID:   stationID,
			Date:        domain.DateOnly(date),
			TotalSales:  totals.TotalSales,
			CashTotal:   totals.CashTotal,
			CardTotal:   totals.CardTotal,
			UPITotal:    totals.UPITotal,
			CreditTotal: totals.CreditTotal,
			Finalized:   true,
		}

		if existing != nil {
			// Refresh the un-finalized row in place. The guard keeps a
			// concurrent Run from finalizing it twice.
			res := tx.Model(&domain.DayReconciliation{}).
				Where("id = ? AND finalized = ?", existing.ID, false).
				Updates(map[string]interface{}{
					"total_sales":  recon.TotalSales,
					"cash_total":   recon.CashTotal,
					"card_total":   recon.CardTotal,
					"upi_total":    recon.UPITotal,
					"credit_total": recon.CreditTotal,
					"finalized":    true,
					"updated_at":   time.Now().UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrAlreadyFinalized
			}
			recon.ID = existing.ID
			recon.CreatedAt = existing.CreatedAt
			return nil
		}

		if err := s.repo.Insert(ctx, tx, recon); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyFinalized
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("day finalized",
		zap.String("station_id", stationID.String()),
		zap.String("date", recon.Date.Format("2006-01-02")),
		zap.String("total_sales", recon.TotalSales.String()),
	)
	return recon, nil
}

func (s *Service) Get(ctx context.Context, stationIDStr string, dateStr string) (*domain.DayReconciliation, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	stationID, err := snowflake.ParseString(stationIDStr)
	if err != nil {
		return nil, domain.ErrInvalidStation
	}

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	recon, err := s.repo.FindByStationDate(ctx, s.db, tenantID, stationID, date)
	if err != nil {
		return nil, err
	}
	if recon == nil {
		return nil, domain.ErrNotFound
	}
	return recon, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.DayReconciliation, error) {
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

	var from, to *time.Time
	if req.From != "" {
		t, err := domain.ParseDate(req.From)
		if err != nil {
			return nil, err
		}
		from = &t
	}
	if req.To != "" {
		t, err := domain.ParseDate(req.To)
		if err != nil {
			return nil, err
		}
		to = &t
	}

	return s.repo.List(ctx, s.db, tenantID, stationID, from, to)
}

func (s *Service) IsDayFinalized(ctx context.Context, tenantID, stationID snowflake.ID, at time.Time) (bool, error) {
	return s.repo.FinalizedOnDate(ctx, s.db, tenantID, stationID, at)
}

// IsDateFinalized satisfies the creditor module's day-lock check. A
// payment date is locked once any station of the tenant has finalized
// that day.
func (s *Service) IsDateFinalized(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date time.Time) (bool, error) {
	return s.repo.AnyFinalizedOnDate(ctx, db, tenantID, date)
}
