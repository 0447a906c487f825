package organization

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/organization/repository"
	"github.com/fieldline/fieldline/internal/organization/service"
)

var Module = fx.Module("organization",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
