package estimate

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/estimate/repository"
	"github.com/fieldline/fieldline/internal/estimate/service"
)

var Module = fx.Module("estimate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
