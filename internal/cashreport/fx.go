package cashreport

import (
	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/cashreport/repository"
	"github.com/fuelsync/fuelsync/internal/cashreport/service"
)

var Module = fx.Module("cashreport.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
