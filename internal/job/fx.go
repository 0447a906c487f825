package job

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/job/repository"
	"github.com/fieldline/fieldline/internal/job/service"
)

var Module = fx.Module("job.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
