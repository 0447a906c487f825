package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/config"
	stripeadapter "github.com/fieldline/fieldline/internal/payment/adapters/stripe"
	paymentdomain "github.com/fieldline/fieldline/internal/payment/domain"
	paymentservice "github.com/fieldline/fieldline/internal/payment/service"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Clock      clock.Clock
	PaymentSvc *paymentservice.Service
}

// Service ingests provider webhook deliveries: verify, parse, process.
type Service struct {
	log        *zap.Logger
	adapter    *stripeadapter.Adapter
	paymentSvc *paymentservice.Service
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		adapter:    stripeadapter.NewAdapter(p.Cfg.StripeWebhookSecret, p.Clock),
		paymentSvc: p.PaymentSvc,
	}
}

func (s *Service) IngestStripe(ctx context.Context, payload []byte, headers http.Header) error {
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	if err := s.adapter.Verify(ctx, payload, headers); err != nil {
		return err
	}

	event, err := s.adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			return nil
		}
		return err
	}

	err = s.paymentSvc.ProcessEvent(ctx, event)
	switch {
	case errors.Is(err, paymentdomain.ErrEventAlreadyProcessed):
		// Replays acknowledge cleanly so the provider stops retrying.
		return nil
	case errors.Is(err, paymentdomain.ErrAgreementNotFound):
		s.log.Warn("subscription event without matching agreement",
			zap.String("subscription_id", event.SubscriptionID))
		return nil
	default:
		return err
	}
}
