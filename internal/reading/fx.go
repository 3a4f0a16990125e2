package reading

import (
	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/reading/repository"
	"github.com/fuelsync/fuelsync/internal/reading/service"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
