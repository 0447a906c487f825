package advisor

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/config"
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	inventorydomain "github.com/fieldline/fieldline/internal/inventory/domain"
	jobdomain "github.com/fieldline/fieldline/internal/job/domain"
	"github.com/fieldline/fieldline/internal/observability/metrics"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
)

const (
	outcomeAI       = "ai"
	outcomeFallback = "fallback"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Holder *config.AdvisorConfigHolder

	Client  Client                   `optional:"true"`
	Metrics *metrics.AdvisoryMetrics `optional:"true"`

	Customers   customerdomain.Service
	Inventory   inventorydomain.Service
	Jobs        jobdomain.Service
	Technicians techniciandomain.Service
}

// Service implements the advisory endpoints. Every endpoint follows the
// same shape: validate input, try a single model call, and fall back to
// a deterministic computation when the call or the parse fails. The
// fallback path never returns an AI error to the caller.
type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	holder  *config.AdvisorConfigHolder
	ai      Client
	metrics *metrics.AdvisoryMetrics

	customers   customerdomain.Service
	inventory   inventorydomain.Service
	jobs        jobdomain.Service
	technicians techniciandomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:         p.Log.Named("advisor.service"),
		clock:       p.Clock,
		holder:      p.Holder,
		ai:          p.Client,
		metrics:     p.Metrics,
		customers:   p.Customers,
		inventory:   p.Inventory,
		jobs:        p.Jobs,
		technicians: p.Technicians,
	}
}

func (s *Service) thresholds() config.AdvisorConfig {
	if s.holder == nil {
		return config.DefaultAdvisorConfig()
	}
	return s.holder.Get()
}

// complete runs one model call and decodes its JSON output into out.
// A false return means the caller must use the deterministic fallback.
func (s *Service) complete(ctx context.Context, endpoint, system, user string, out any) bool {
	if s.ai == nil {
		return false
	}
	raw, err := s.ai.Complete(ctx, CompletionRequest{System: system, User: user})
	if err != nil {
		s.log.Warn("model call failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return false
	}
	if err := decodeJSON(raw, out); err != nil {
		s.log.Warn("model output not parseable",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *Service) record(endpoint, outcome string) {
	s.metrics.Record(endpoint, outcome)
}
