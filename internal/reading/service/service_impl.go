package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	"github.com/fuelsync/fuelsync/internal/observability/metrics"
	"github.com/fuelsync/fuelsync/internal/reading/domain"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
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
	AlertSvc    alertdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
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
	alertSvc    alertdomain.Service
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reading.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		stationRepo: p.StationRepo,
		priceRepo:   p.PriceRepo,
		saleRepo:    p.SaleRepo,
		reconRepo:   p.ReconRepo,
		creditorSvc: p.CreditorSvc,
		alertSvc:    p.AlertSvc,
		metrics:     p.Metrics,
	}
}

// Submit ingests a cumulative meter reading and derives its sale. The
// reading row, the sale row, and any creditor balance movement commit
// or roll back as one unit.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	nozzleID, err := snowflake.ParseString(req.NozzleID)
	if err != nil {
		return nil, domain.ErrInvalidNozzle
	}
	if req.Reading.IsNegative() {
		return nil, domain.ErrInvalidReading
	}

	method := saledomain.PaymentMethod(req.PaymentMethod)
	if !saledomain.ValidPaymentMethod(method) {
		return nil, domain.ErrInvalidPayment
	}

	var creditorID snowflake.ID
	if method == saledomain.PaymentCredit {
		if req.CreditorID == "" {
			return nil, domain.ErrCreditorRequired
		}
		creditorID, err = snowflake.ParseString(req.CreditorID)
		if err != nil {
			return nil, domain.ErrInvalidCreditor
		}
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != "" {
		recordedAt, err = time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			return nil, domain.ErrInvalidRecordedAt
		}
		recordedAt = recordedAt.UTC()
	}

	var result *domain.SubmitResult
	var fuelType string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nozzle, err := s.stationRepo.ResolveNozzle(ctx, tx, tenantID, nozzleID)
		if err != nil {
			return err
		}
		if nozzle == nil {
			return domain.ErrInvalidReference
		}
		fuelType = string(nozzle.FuelType)

		// The previous reading is locked for the rest of the transaction
		// so two submissions for the same nozzle serialize.
		last, err := s.repo.FindLastBefore(ctx, tx, tenantID, nozzleID, recordedAt, true)
		if err != nil {
			return err
		}
		previous := decimal.Zero
		if last != nil {
			previous = last.Reading
		}
		if req.Reading.LessThan(previous) {
			return domain.ErrNonMonotonic
		}

		// A later reading has already priced its delta against the
		// current sequence; splicing a reading in front of it would bill
		// the same litres twice.
		hasLater, err := s.repo.HasOnOrAfter(ctx, tx, tenantID, nozzleID, recordedAt)
		if err != nil {
			return err
		}
		if hasLater {
			return domain.ErrNonMonotonic
		}

		finalized, err := s.reconRepo.FinalizedOnDate(ctx, tx, tenantID, nozzle.StationID, recordedAt)
		if err != nil {
			return err
		}
		if finalized {
			return domain.ErrDayFinalized
		}

		reading := &domain.NozzleReading{
			ID:            s.genID.Generate(),
			TenantID:      tenantID,
			StationID:     nozzle.StationID,
			NozzleID:      nozzleID,
			Reading:       req.Reading,
			RecordedAt:    recordedAt,
			PaymentMethod: string(method),
		}
		if method == saledomain.PaymentCredit {
			reading.CreditorID = &creditorID
		}
		if err := s.repo.Insert(ctx, tx, reading); err != nil {
			return err
		}

		sale, nearLimit, err := s.deriveSale(ctx, tx, tenantID, nozzle, reading, previous, method, creditorID)
		if err != nil {
			return err
		}

		result = &domain.SubmitResult{
			ReadingID: reading.ID.String(),
			SaleID:    sale.ID.String(),
			Volume:    sale.Volume,
			Amount:    sale.Amount,
			FuelPrice: sale.FuelPrice,
			NearLimit: nearLimit,
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordReadingRejected(ctx, err.Error())
		return nil, err
	}

	s.metrics.RecordReadingAccepted(ctx, fuelType)
	s.metrics.RecordSaleDerived(ctx, req.PaymentMethod)
	s.log.Info("reading accepted",
		zap.String("reading_id", result.ReadingID),
		zap.String("sale_id", result.SaleID),
		zap.String("volume", result.Volume.String()),
		zap.String("amount", result.Amount.String()),
	)
	return result, nil
}

// deriveSale computes volume and amount for the reading and writes the
// sale row, running entirely inside the caller's transaction.
func (s *Service) deriveSale(
	ctx context.Context,
	tx *gorm.DB,
	tenantID snowflake.ID,
	nozzle *stationdomain.ResolvedNozzle,
	reading *domain.NozzleReading,
	previous decimal.Decimal,
	method saledomain.PaymentMethod,
	creditorID snowflake.ID,
) (*saledomain.Sale, bool, error) {
	volume := reading.Reading.Sub(previous).Round(3)
	if volume.IsNegative() {
		return nil, false, domain.ErrNonMonotonic
	}

	price, err := s.priceRepo.FindAt(ctx, tx, tenantID, nozzle.StationID, nozzle.FuelType, reading.RecordedAt)
	if err != nil {
		return nil, false, err
	}
	if price == nil {
		return nil, false, fuelpricedomain.ErrPriceMissing
	}
	if reading.RecordedAt.Sub(price.ValidFrom) > fuelpricedomain.StalePriceWindow {
		return nil, false, fuelpricedomain.ErrPriceOutdated
	}

	amount := volume.Mul(price.Price).Round(2)

	nearLimit := false
	if method == saledomain.PaymentCredit {
		check, err := s.creditorSvc.ApplyCreditSale(ctx, tx, tenantID, creditorID, amount)
		if err != nil {
			return nil, false, err
		}
		if check.NearLimit {
			nearLimit = true
			stationID := nozzle.StationID
			_, err := s.alertSvc.Raise(ctx, tx, alertdomain.RaiseRequest{
				TenantID:  tenantID,
				StationID: &stationID,
				Type:      alertdomain.AlertCreditNearLimit,
				Severity:  alertdomain.SeverityWarning,
				Message:   "creditor balance reached 90% of credit limit",
				Metadata: map[string]interface{}{
					"creditor_id": creditorID.String(),
					"sale_amount": amount.String(),
				},
			})
			if err != nil {
				return nil, false, err
			}
		}
	}

	actor, _ := tenantctx.ActorIDFromContext(ctx)
	readingID := reading.ID
	sale := &saledomain.Sale{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		NozzleID:      nozzle.NozzleID,
		ReadingID:     &readingID,
		StationID:     nozzle.StationID,
		FuelType:      nozzle.FuelType,
		Volume:        volume,
		FuelPrice:     price.Price,
		Amount:        amount,
		PaymentMethod: method,
		CreatedBy:     actor,
		RecordedAt:    reading.RecordedAt,
	}
	if method == saledomain.PaymentCredit {
		sale.CreditorID = &creditorID
	}
	if err := s.saleRepo.Insert(ctx, tx, sale); err != nil {
		return nil, false, err
	}
	return sale, nearLimit, nil
}

// CanSubmit is the preflight check pump attendants see before typing a
// reading: whether the nozzle accepts submissions right now, and the
// value a new reading must not fall below.
func (s *Service) CanSubmit(ctx context.Context, nozzleIDStr string) (*domain.CanSubmitResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	nozzleID, err := snowflake.ParseString(nozzleIDStr)
	if err != nil {
		return nil, domain.ErrInvalidNozzle
	}

	nozzle, err := s.stationRepo.ResolveNozzle(ctx, s.db, tenantID, nozzleID)
	if err != nil {
		return nil, err
	}
	if nozzle == nil {
		return &domain.CanSubmitResult{Allowed: false, Reason: "nozzle_not_found"}, nil
	}
	if nozzle.Status != stationdomain.NozzleActive {
		return &domain.CanSubmitResult{Allowed: false, Reason: "nozzle_inactive"}, nil
	}

	now := time.Now().UTC()
	finalized, err := s.reconRepo.FinalizedOnDate(ctx, s.db, tenantID, nozzle.StationID, now)
	if err != nil {
		return nil, err
	}
	if finalized {
		return &domain.CanSubmitResult{Allowed: false, Reason: "day_finalized"}, nil
	}

	price, err := s.priceRepo.FindAt(ctx, s.db, tenantID, nozzle.StationID, nozzle.FuelType, now)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return &domain.CanSubmitResult{Allowed: false, Reason: "price_missing"}, nil
	}
	if now.Sub(price.ValidFrom) > fuelpricedomain.StalePriceWindow {
		return &domain.CanSubmitResult{Allowed: false, Reason: "price_outdated"}, nil
	}

	res := &domain.CanSubmitResult{Allowed: true}
	last, err := s.repo.FindPrevious(ctx, s.db, tenantID, nozzleID, now)
	if err != nil {
		return nil, err
	}
	if last != nil {
		prev := last.Reading
		res.PreviousReading = &prev
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.ReadingWithVolume, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	filter := domain.ListFilter{Limit: req.Limit}
	if req.StationID != "" {
		id, err := snowflake.ParseString(req.StationID)
		if err != nil {
			return nil, domain.ErrInvalidReference
		}
		filter.StationID = &id
	}
	if req.NozzleID != "" {
		id, err := snowflake.ParseString(req.NozzleID)
		if err != nil {
			return nil, domain.ErrInvalidNozzle
		}
		filter.NozzleID = &id
	}
	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, domain.ErrInvalidRecordedAt
		}
		filter.From = &t
	}
	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, domain.ErrInvalidRecordedAt
		}
		filter.To = &t
	}

	readings, err := s.repo.List(ctx, s.db, tenantID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReadingWithVolume, 0, len(readings))
	for _, reading := range readings {
		row := domain.ReadingWithVolume{NozzleReading: reading}
		last, err := s.repo.FindPrevious(ctx, s.db, tenantID, reading.NozzleID, reading.RecordedAt)
		if err != nil {
			return nil, err
		}
		previous := decimal.Zero
		if last != nil {
			previous = last.Reading
			prev := last.Reading
			row.PreviousReading = &prev
		}
		row.Volume = reading.Reading.Sub(previous).Round(3)
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, idStr string) (*domain.ReadingWithVolume, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(idStr)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	reading, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, domain.ErrNotFound
	}

	row := &domain.ReadingWithVolume{NozzleReading: *reading}
	last, err := s.repo.FindPrevious(ctx, s.db, tenantID, reading.NozzleID, reading.RecordedAt)
	if err != nil {
		return nil, err
	}
	previous := decimal.Zero
	if last != nil {
		previous = last.Reading
		prev := last.Reading
		row.PreviousReading = &prev
	}
	row.Volume = reading.Reading.Sub(previous).Round(3)
	return row, nil
}

// Update corrects a reading that has not yet produced a sale. Once a
// sale exists the reading is part of settled money flow and stays
// immutable.
func (s *Service) Update(ctx context.Context, idStr string, req domain.UpdateRequest) (*domain.NozzleReading, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(idStr)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var updated *domain.NozzleReading
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err := s.repo.FindByID(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if reading == nil {
			return domain.ErrNotFound
		}

		count, err := s.saleRepo.CountByReading(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrReadingHasSale
		}

		finalized, err := s.reconRepo.FinalizedOnDate(ctx, tx, tenantID, reading.StationID, reading.RecordedAt)
		if err != nil {
			return err
		}
		if finalized {
			return domain.ErrDayFinalized
		}

		if req.Reading != nil {
			if req.Reading.IsNegative() {
				return domain.ErrInvalidReading
			}
			reading.Reading = *req.Reading
		}
		if req.RecordedAt != nil {
			t, err := time.Parse(time.RFC3339, *req.RecordedAt)
			if err != nil {
				return domain.ErrInvalidRecordedAt
			}
			reading.RecordedAt = t.UTC()
		}
		if req.PaymentMethod != nil {
			method := saledomain.PaymentMethod(*req.PaymentMethod)
			if !saledomain.ValidPaymentMethod(method) {
				return domain.ErrInvalidPayment
			}
			reading.PaymentMethod = string(method)
		}
		reading.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, tx, reading); err != nil {
			return err
		}
		updated = reading
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
