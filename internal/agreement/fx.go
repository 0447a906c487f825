package agreement

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/agreement/repository"
	"github.com/fieldline/fieldline/internal/agreement/service"
)

var Module = fx.Module("agreement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
