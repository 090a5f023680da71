package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/specbook/internal/config"
	"github.com/smallbiznis/specbook/internal/migration"
	"github.com/smallbiznis/specbook/internal/observability"
	"github.com/smallbiznis/specbook/internal/server"
	"github.com/smallbiznis/specbook/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
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
