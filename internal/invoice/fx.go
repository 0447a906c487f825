package invoice

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/invoice/repository"
	"github.com/fieldline/fieldline/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
