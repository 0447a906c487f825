package billing

import (
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/sub"

	"github.com/fieldline/fieldline/internal/config"
)

// StripeGateway wraps the outbound Stripe calls so services can be
// tested against a stub.
type StripeGateway interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	CancelSubscription(subscriptionID string) (*stripe.Subscription, error)
}

type liveGateway struct{}

func NewGateway(cfg config.Config) StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return liveGateway{}
}

func (liveGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (liveGateway) CancelSubscription(subscriptionID string) (*stripe.Subscription, error) {
	return sub.Cancel(subscriptionID, nil)
}
