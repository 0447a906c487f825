package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/config"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
)

type stubGateway struct {
	lastCheckout *stripe.CheckoutSessionParams
	cancelled    []string
	checkoutErr  error
	cancelErr    error
}

func (g *stubGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.lastCheckout = params
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return &stripe.CheckoutSession{ID: "cs_test_123"}, nil
}

func (g *stubGateway) CancelSubscription(subscriptionID string) (*stripe.Subscription, error) {
	g.cancelled = append(g.cancelled, subscriptionID)
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	return &stripe.Subscription{ID: subscriptionID}, nil
}

type stubInvoiceSvc struct {
	invoice invoicedomain.Invoice
	err     error
}

func (s *stubInvoiceSvc) Create(context.Context, invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, errors.New("not implemented")
}

func (s *stubInvoiceSvc) List(context.Context, invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	return invoicedomain.ListInvoiceResponse{}, errors.New("not implemented")
}

func (s *stubInvoiceSvc) GetByID(context.Context, invoicedomain.GetInvoiceRequest) (invoicedomain.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceSvc) Send(context.Context, invoicedomain.SendInvoiceRequest) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, errors.New("not implemented")
}

func (s *stubInvoiceSvc) Void(context.Context, invoicedomain.VoidInvoiceRequest) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, errors.New("not implemented")
}

type stubAgreementSvc struct {
	agreement agreementdomain.Agreement
	err       error
	cancelled []string
}

func (s *stubAgreementSvc) Create(context.Context, agreementdomain.CreateAgreementRequest) (agreementdomain.Agreement, error) {
	return agreementdomain.Agreement{}, errors.New("not implemented")
}

func (s *stubAgreementSvc) List(context.Context, agreementdomain.ListAgreementRequest) (agreementdomain.ListAgreementResponse, error) {
	return agreementdomain.ListAgreementResponse{}, errors.New("not implemented")
}

func (s *stubAgreementSvc) ListAll(context.Context) ([]agreementdomain.Agreement, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAgreementSvc) GetByID(context.Context, agreementdomain.GetAgreementRequest) (agreementdomain.Agreement, error) {
	return s.agreement, s.err
}

func (s *stubAgreementSvc) Cancel(_ context.Context, req agreementdomain.CancelAgreementRequest) (agreementdomain.Agreement, error) {
	s.cancelled = append(s.cancelled, req.ID)
	cancelled := s.agreement
	cancelled.PaymentStatus = agreementdomain.StatusCancelled
	return cancelled, nil
}

func (s *stubAgreementSvc) LinkProviderSubscription(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubAgreementSvc) UpdateStatusByProviderSubscription(context.Context, string, string) (*agreementdomain.Agreement, error) {
	return nil, errors.New("not implemented")
}

func newTestService(gateway *stubGateway, invSvc *stubInvoiceSvc, agrSvc *stubAgreementSvc) *Service {
	return NewService(Params{
		Log: zap.NewNop(),
		Cfg: config.Config{
			BaseURL:         "https://app.example.com",
			StripeSecretKey: "sk_test_abc",
		},
		Gateway:      gateway,
		InvoiceSvc:   invSvc,
		AgreementSvc: agrSvc,
	})
}

func TestCreateInvoiceCheckout(t *testing.T) {
	gateway := &stubGateway{}
	invSvc := &stubInvoiceSvc{invoice: invoicedomain.Invoice{
		ID:            snowflake.ID(2001),
		CustomerID:    snowflake.ID(9001),
		InvoiceNumber: "INV-0042",
		Status:        invoicedomain.InvoiceStatusSent,
		BalanceDue:    decimal.RequireFromString("120.50"),
	}}
	svc := newTestService(gateway, invSvc, &stubAgreementSvc{})

	result, err := svc.CreateInvoiceCheckout(context.Background(), "2001")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.SessionID != "cs_test_123" {
		t.Fatalf("session_id = %q", result.SessionID)
	}

	params := gateway.lastCheckout
	if params == nil {
		t.Fatal("gateway not called")
	}
	if got := *params.LineItems[0].PriceData.UnitAmount; got != 12050 {
		t.Fatalf("unit_amount = %d, want 12050", got)
	}
	if got := params.Metadata["invoice_id"]; got != "2001" {
		t.Fatalf("invoice_id metadata = %q", got)
	}
}

func TestCreateInvoiceCheckoutRejectsClosedInvoice(t *testing.T) {
	invSvc := &stubInvoiceSvc{invoice: invoicedomain.Invoice{
		ID:     snowflake.ID(2001),
		Status: invoicedomain.InvoiceStatusPaid,
	}}
	svc := newTestService(&stubGateway{}, invSvc, &stubAgreementSvc{})

	_, err := svc.CreateInvoiceCheckout(context.Background(), "2001")
	if !errors.Is(err, ErrInvoiceNotOpen) {
		t.Fatalf("closed invoice: got %v", err)
	}
}

func TestCreateInvoiceCheckoutRequiresConfiguredKey(t *testing.T) {
	svc := NewService(Params{
		Log:          zap.NewNop(),
		Cfg:          config.Config{},
		Gateway:      &stubGateway{},
		InvoiceSvc:   &stubInvoiceSvc{},
		AgreementSvc: &stubAgreementSvc{},
	})

	_, err := svc.CreateInvoiceCheckout(context.Background(), "2001")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("missing key: got %v", err)
	}
}

func TestCreateAgreementCheckoutIsRecurring(t *testing.T) {
	gateway := &stubGateway{}
	agrSvc := &stubAgreementSvc{agreement: agreementdomain.Agreement{
		ID:            snowflake.ID(3001),
		CustomerID:    snowflake.ID(9001),
		PlanName:      "Gold Maintenance",
		MonthlyAmount: decimal.NewFromInt(49),
	}}
	svc := newTestService(gateway, &stubInvoiceSvc{}, agrSvc)

	if _, err := svc.CreateAgreementCheckout(context.Background(), "3001"); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	params := gateway.lastCheckout
	if params == nil {
		t.Fatal("gateway not called")
	}
	if got := *params.Mode; got != string(stripe.CheckoutSessionModeSubscription) {
		t.Fatalf("mode = %q", got)
	}
	recurring := params.LineItems[0].PriceData.Recurring
	if recurring == nil || *recurring.Interval != "month" {
		t.Fatalf("recurring = %+v", recurring)
	}
}

func TestCancelAgreement(t *testing.T) {
	gateway := &stubGateway{}
	agrSvc := &stubAgreementSvc{agreement: agreementdomain.Agreement{
		ID:                     snowflake.ID(3001),
		PaymentStatus:          agreementdomain.StatusActive,
		ProviderSubscriptionID: "sub_123",
	}}
	svc := newTestService(gateway, &stubInvoiceSvc{}, agrSvc)

	agreement, err := svc.CancelAgreement(context.Background(), "3001")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if agreement.PaymentStatus != agreementdomain.StatusCancelled {
		t.Fatalf("payment_status = %q", agreement.PaymentStatus)
	}
	if len(gateway.cancelled) != 1 || gateway.cancelled[0] != "sub_123" {
		t.Fatalf("provider cancels = %v", gateway.cancelled)
	}
}

func TestCancelAgreementWithoutSubscriptionSkipsProvider(t *testing.T) {
	gateway := &stubGateway{}
	agrSvc := &stubAgreementSvc{agreement: agreementdomain.Agreement{
		ID:            snowflake.ID(3001),
		PaymentStatus: agreementdomain.StatusTrial,
	}}
	svc := newTestService(gateway, &stubInvoiceSvc{}, agrSvc)

	if _, err := svc.CancelAgreement(context.Background(), "3001"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(gateway.cancelled) != 0 {
		t.Fatalf("provider cancels = %v, want none", gateway.cancelled)
	}
	if len(agrSvc.cancelled) != 1 {
		t.Fatalf("local cancels = %v", agrSvc.cancelled)
	}
}

func TestCheckoutSurfacesProviderFailure(t *testing.T) {
	gateway := &stubGateway{checkoutErr: errors.New("card_network_down")}
	invSvc := &stubInvoiceSvc{invoice: invoicedomain.Invoice{
		ID:         snowflake.ID(2001),
		Status:     invoicedomain.InvoiceStatusSent,
		BalanceDue: decimal.NewFromInt(100),
	}}
	svc := newTestService(gateway, invSvc, &stubAgreementSvc{})

	_, err := svc.CreateInvoiceCheckout(context.Background(), "2001")
	if !errors.Is(err, ErrProviderRejected) {
		t.Fatalf("provider failure: got %v", err)
	}
}
