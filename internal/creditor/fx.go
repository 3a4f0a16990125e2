package creditor

import (
	"github.com/fuelsync/fuelsync/internal/creditor/repository"
	"github.com/fuelsync/fuelsync/internal/creditor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("creditor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
