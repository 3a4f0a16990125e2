package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fuelsync/fuelsync/internal/alert"
	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	"github.com/fuelsync/fuelsync/internal/cashreport"
	cashreportdomain "github.com/fuelsync/fuelsync/internal/cashreport/domain"
	"github.com/fuelsync/fuelsync/internal/config"
	"github.com/fuelsync/fuelsync/internal/creditor"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	"github.com/fuelsync/fuelsync/internal/fuelprice"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	obsmetrics "github.com/fuelsync/fuelsync/internal/observability/metrics"
	obstracing "github.com/fuelsync/fuelsync/internal/observability/tracing"
	"github.com/fuelsync/fuelsync/internal/ratelimit"
	"github.com/fuelsync/fuelsync/internal/reading"
	readingdomain "github.com/fuelsync/fuelsync/internal/reading/domain"
	"github.com/fuelsync/fuelsync/internal/reconciliation"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	"github.com/fuelsync/fuelsync/internal/sale"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	"github.com/fuelsync/fuelsync/internal/station"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	station.Module,
	fuelprice.Module,
	creditor.Module,
	reading.Module,
	sale.Module,
	reconciliation.Module,
	alert.Module,
	cashreport.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	stationSvc    stationdomain.Service
	priceSvc      fuelpricedomain.Service
	creditorSvc   creditordomain.Service
	readingSvc    readingdomain.Service
	saleSvc       saledomain.Service
	reconSvc      recondomain.Service
	alertSvc      alertdomain.Service
	cashReportSvc cashreportdomain.Service
	obsMetrics    *obsmetrics.Metrics
	ingestLimiter *ratelimit.ReadingIngestLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	StationSvc    stationdomain.Service
	PriceSvc      fuelpricedomain.Service
	CreditorSvc   creditordomain.Service
	ReadingSvc    readingdomain.Service
	SaleSvc       saledomain.Service
	ReconSvc      recondomain.Service
	AlertSvc      alertdomain.Service
	CashReportSvc cashreportdomain.Service
	ObsMetrics    *obsmetrics.Metrics             `optional:"true"`
	IngestLimiter *ratelimit.ReadingIngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		stationSvc:    p.StationSvc,
		priceSvc:      p.PriceSvc,
		creditorSvc:   p.CreditorSvc,
		readingSvc:    p.ReadingSvc,
		saleSvc:       p.SaleSvc,
		reconSvc:      p.ReconSvc,
		alertSvc:      p.AlertSvc,
		cashReportSvc: p.CashReportSvc,
		obsMetrics:    p.ObsMetrics,
		ingestLimiter: p.IngestLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(TenantContext())

	api.POST("/stations", s.CreateStation)
	api.GET("/stations", s.ListStations)
	api.GET("/stations/:id", s.GetStation)
	api.PATCH("/stations/:id", s.UpdateStation)
	api.POST("/pumps", s.CreatePump)
	api.GET("/pumps", s.ListPumps)
	api.PATCH("/pumps/:id/status", s.UpdatePumpStatus)
	api.POST("/nozzles", s.CreateNozzle)
	api.GET("/nozzles", s.ListNozzles)
	api.PATCH("/nozzles/:id/status", s.UpdateNozzleStatus)

	api.POST("/fuel-prices", s.CreateFuelPrice)
	api.GET("/fuel-prices", s.ListFuelPrices)
	api.GET("/fuel-prices/at", s.GetFuelPriceAt)
	api.DELETE("/fuel-prices/:id", s.DeleteFuelPrice)

	api.POST("/creditors", s.CreateCreditor)
	api.GET("/creditors", s.ListCreditors)
	api.GET("/creditors/:id", s.GetCreditor)
	api.PATCH("/creditors/:id", s.UpdateCreditor)
	api.DELETE("/creditors/:id", s.DeactivateCreditor)
	api.POST("/credit-payments", s.RecordCreditPayment)
	api.GET("/credit-payments", s.ListCreditPayments)

	api.POST("/readings", s.ingestRateLimit(), s.SubmitReading)
	api.GET("/readings", s.ListReadings)
	api.GET("/readings/can-create/:nozzleId", s.CanSubmitReading)
	api.GET("/readings/:id", s.GetReading)

	api.GET("/sales", s.ListSales)
	api.GET("/sales/today-totals/:stationId", s.TodaySaleTotals)

	api.POST("/reconciliation/:stationId/run", s.RunReconciliation)
	api.GET("/reconciliation/:stationId", s.GetReconciliation)
	api.GET("/reconciliation", s.ListReconciliations)

	api.GET("/alerts", s.ListAlerts)
	api.POST("/alerts/:id/ack", s.AcknowledgeAlert)

	api.POST("/cash-reports", s.CreateCashReport)
	api.GET("/cash-reports", s.ListCashReports)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(TenantContext())

	admin.POST("/alerts/run", s.RunAlertSweeps)
	admin.PATCH("/readings/:id", s.UpdateReading)
}
