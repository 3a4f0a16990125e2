package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	cashreportdomain "github.com/fuelsync/fuelsync/internal/cashreport/domain"
	"github.com/fuelsync/fuelsync/internal/config"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	readingdomain "github.com/fuelsync/fuelsync/internal/reading/domain"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	"github.com/fuelsync/fuelsync/internal/seed"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are supported for local development only,
			// where gorm's schema sync is good enough.
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)

// AutoMigrate syncs the schema from the model definitions.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&stationdomain.Station{},
		&stationdomain.Pump{},
		&stationdomain.Nozzle{},
		&fuelpricedomain.FuelPrice{},
		&creditordomain.Creditor{},
		&creditordomain.CreditPayment{},
		&readingdomain.NozzleReading{},
		&saledomain.Sale{},
		&recondomain.DayReconciliation{},
		&alertdomain.Alert{},
		&cashreportdomain.CashReport{},
	)
}
