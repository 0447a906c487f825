package inventory

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/inventory/repository"
	"github.com/fieldline/fieldline/internal/inventory/service"
)

var Module = fx.Module("inventory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
