package advisor

import (
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldline/fieldline/internal/config"
)

var Module = fx.Module("advisor.service",
	fx.Provide(provideClient),
	fx.Provide(New),
)

// provideClient tolerates a missing API key. The advisory endpoints
// stay up on their deterministic fallbacks when no provider is
// configured.
func provideClient(cfg config.Config, log *zap.Logger) Client {
	client, err := NewClient(cfg)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			log.Warn("no AI provider configured, advisory endpoints run on fallbacks only")
			return nil
		}
		log.Error("AI client init failed", zap.Error(err))
		return nil
	}
	return client
}
