package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v72"
	"go.uber.org/fx"
	"go.uber.org/zap"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/config"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
)

var centsPerUnit = decimal.NewFromInt(100)

var (
	ErrNotConfigured    = errors.New("billing_not_configured")
	ErrInvoiceNotOpen   = errors.New("invoice_not_open")
	ErrNoSubscription   = errors.New("agreement_has_no_subscription")
	ErrProviderRejected = errors.New("payment_provider_rejected")
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Cfg          config.Config
	Gateway      StripeGateway
	InvoiceSvc   invoicedomain.Service
	AgreementSvc agreementdomain.Service
}

// Service drives outbound billing: hosted checkout for invoices and
// recurring agreements, and provider-side subscription cancelation.
type Service struct {
	log          *zap.Logger
	cfg          config.Config
	gateway      StripeGateway
	invoiceSvc   invoicedomain.Service
	agreementSvc agreementdomain.Service
}

func NewService(p Params) *Service {
	return &Service{
		log:          p.Log.Named("billing.service"),
		cfg:          p.Cfg,
		gateway:      p.Gateway,
		invoiceSvc:   p.InvoiceSvc,
		agreementSvc: p.AgreementSvc,
	}
}

// CheckoutResult carries the hosted session ID. The client completes
// the redirect with Stripe.js.
type CheckoutResult struct {
	SessionID string `json:"session_id"`
}

// CreateInvoiceCheckout opens a one-off Stripe Checkout session for the
// outstanding balance of an invoice. The invoice and customer IDs ride
// along as metadata so the webhook can reconcile the payment.
func (s *Service) CreateInvoiceCheckout(ctx context.Context, invoiceID string) (*CheckoutResult, error) {
	if strings.TrimSpace(s.cfg.StripeSecretKey) == "" {
		return nil, ErrNotConfigured
	}

	invoice, err := s.invoiceSvc.GetByID(ctx, invoicedomain.GetInvoiceRequest{ID: invoiceID})
	if err != nil {
		return nil, err
	}
	if !invoice.Open() {
		return nil, ErrInvoiceNotOpen
	}

	amountCents := invoice.BalanceDue.Mul(centsPerUnit).IntPart()
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.cfg.BaseURL + "/billing/cancel"),
		ClientReferenceID: stripe.String(invoice.ID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(amountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)),
				},
			},
		}},
	}
	params.AddMetadata("invoice_id", invoice.ID.String())
	params.AddMetadata("customer_id", invoice.CustomerID.String())

	created, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		s.log.Warn("stripe checkout session failed", zap.Error(err))
		return nil, ErrProviderRejected
	}

	return &CheckoutResult{SessionID: created.ID}, nil
}

// CreateAgreementCheckout opens a subscription-mode Checkout session
// for a maintenance agreement.
func (s *Service) CreateAgreementCheckout(ctx context.Context, agreementID string) (*CheckoutResult, error) {
	if strings.TrimSpace(s.cfg.StripeSecretKey) == "" {
		return nil, ErrNotConfigured
	}

	agreement, err := s.agreementSvc.GetByID(ctx, agreementdomain.GetAgreementRequest{ID: agreementID})
	if err != nil {
		return nil, err
	}

	amountCents := agreement.MonthlyAmount.Mul(centsPerUnit).IntPart()
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.cfg.BaseURL + "/billing/cancel"),
		ClientReferenceID: stripe.String(agreement.ID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(amountCents),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String("month"),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(agreement.PlanName),
				},
			},
		}},
	}
	params.AddMetadata("agreement_id", agreement.ID.String())
	params.AddMetadata("customer_id", agreement.CustomerID.String())

	created, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		s.log.Warn("stripe subscription checkout failed", zap.Error(err))
		return nil, ErrProviderRejected
	}

	return &CheckoutResult{SessionID: created.ID}, nil
}

// CancelAgreement cancels the provider subscription, if linked, then
// cancels the agreement locally.
func (s *Service) CancelAgreement(ctx context.Context, agreementID string) (agreementdomain.Agreement, error) {
	agreement, err := s.agreementSvc.GetByID(ctx, agreementdomain.GetAgreementRequest{ID: agreementID})
	if err != nil {
		return agreementdomain.Agreement{}, err
	}

	if sub := strings.TrimSpace(agreement.ProviderSubscriptionID); sub != "" {
		if strings.TrimSpace(s.cfg.StripeSecretKey) == "" {
			return agreementdomain.Agreement{}, ErrNotConfigured
		}
		if _, err := s.gateway.CancelSubscription(sub); err != nil {
			s.log.Warn("stripe subscription cancel failed",
				zap.String("subscription_id", sub), zap.Error(err))
			return agreementdomain.Agreement{}, ErrProviderRejected
		}
	}

	return s.agreementSvc.Cancel(ctx, agreementdomain.CancelAgreementRequest{ID: agreementID})
}
