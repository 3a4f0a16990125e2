package fuelprice

import (
	"github.com/fuelsync/fuelsync/internal/fuelprice/repository"
	"github.com/fuelsync/fuelsync/internal/fuelprice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fuelprice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
