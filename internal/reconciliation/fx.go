package reconciliation

import (
	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/reconciliation/repository"
	"github.com/fuelsync/fuelsync/internal/reconciliation/service"
)

var Module = fx.Module("reconciliation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewDayLock),
)
