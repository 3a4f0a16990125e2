package sale

import (
	"github.com/fuelsync/fuelsync/internal/sale/repository"
	"github.com/fuelsync/fuelsync/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
