package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fieldline/fieldline/internal/advisor"
	"github.com/fieldline/fieldline/internal/billing"
	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/migration"
	"github.com/fieldline/fieldline/internal/observability"
	"github.com/fieldline/fieldline/internal/ratelimit"
	"github.com/fieldline/fieldline/internal/scheduler"
	"github.com/fieldline/fieldline/internal/server"
	"github.com/fieldline/fieldline/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		advisor.Module,
		billing.Module,
		ratelimit.Module,
		scheduler.Module,
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
