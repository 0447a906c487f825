package observability

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/config"
	"github.com/fieldline/fieldline/internal/observability/logger"
	"github.com/fieldline/fieldline/internal/observability/metrics"
)

var Module = fx.Module("observability",
	config.Module,
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		metrics.NewHTTPMetrics,
		metrics.NewAdvisoryMetrics,
	),
)

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Debug:       cfg.Debug(),
	}
}
