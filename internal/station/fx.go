package station

import (
	"github.com/fuelsync/fuelsync/internal/station/repository"
	"github.com/fuelsync/fuelsync/internal/station/service"
	"go.uber.org/fx"
)

var Module = fx.Module("station.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
