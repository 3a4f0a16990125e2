package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/fuelsync/fuelsync/internal/logger"
	"github.com/fuelsync/fuelsync/internal/migration"
	"github.com/fuelsync/fuelsync/internal/observability"
	"github.com/fuelsync/fuelsync/internal/scheduler"
	"github.com/fuelsync/fuelsync/internal/server"
	"github.com/fuelsync/fuelsync/pkg/db"
)

func main() {
	app := fx.New(
		observability.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
		scheduler.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
