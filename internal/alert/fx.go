package alert

import (
	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/alert/repository"
	"github.com/fuelsync/fuelsync/internal/alert/service"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
