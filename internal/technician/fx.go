package technician

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/technician/repository"
	"github.com/fieldline/fieldline/internal/technician/service"
)

var Module = fx.Module("technician.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
