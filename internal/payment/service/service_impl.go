package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/clock"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
	paymentdomain "github.com/fieldline/fieldline/internal/payment/domain"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          paymentdomain.Repository
	InvoiceRepo   invoicedomain.Repository
	AgreementRepo agreementdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clk           clock.Clock
	repo          paymentdomain.Repository
	invoiceRepo   invoicedomain.Repository
	agreementRepo agreementdomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("payment.service"),
		genID:         p.GenID,
		clk:           p.Clock,
		repo:          p.Repo,
		invoiceRepo:   p.InvoiceRepo,
		agreementRepo: p.AgreementRepo,
	}
}

// ProcessEvent applies a parsed provider event exactly once. Replayed
// deliveries of an already processed event return
// ErrEventAlreadyProcessed.
func (s *Service) ProcessEvent(ctx context.Context, event *paymentdomain.PaymentEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	now := s.clk.Now().UTC()
	record := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		Payload:         datatypes.JSON(event.RawPayload),
		CreatedAt:       now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &record)
	if err != nil {
		return err
	}
	stored := &record
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	// Applying the event and stamping it processed commit together. If
	// they were separate, a crash between the two would leave
	// processed_at nil and the provider's retry would apply the same
	// payment twice.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch event.Type {
		case paymentdomain.EventTypePaymentSucceeded:
			err = s.reconcilePayment(ctx, tx, event)
		case paymentdomain.EventTypeSubscriptionUpdated:
			err = s.applySubscriptionStatus(ctx, tx, event)
		default:
			err = paymentdomain.ErrInvalidEvent
		}
		if err != nil {
			return err
		}

		return s.repo.MarkProcessed(ctx, tx, stored.ID, now)
	})
}

// reconcilePayment records the payment and moves the invoice balance.
// It runs inside the ProcessEvent transaction so a payment is never
// applied without the invoice reflecting it and the event being marked
// processed.
func (s *Service) reconcilePayment(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) error {
	if event.InvoiceID == nil {
		return paymentdomain.ErrInvoiceNotFound
	}

	amount := decimal.New(event.AmountCents, -2)
	now := s.clk.Now().UTC()

	invoice, err := s.invoiceRepo.FindByIDAnyOrg(ctx, tx, *event.InvoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return paymentdomain.ErrInvoiceNotFound
	}
	if invoice.Status == invoicedomain.InvoiceStatusVoid {
		return paymentdomain.ErrInvoiceNotOpen
	}

	payment := paymentdomain.Payment{
		ID:                s.genID.Generate(),
		OrgID:             invoice.OrgID,
		InvoiceID:         invoice.ID,
		CustomerID:        event.CustomerID,
		Amount:            amount,
		Currency:          event.Currency,
		Provider:          event.Provider,
		ProviderPaymentID: event.ProviderPaymentID,
		ReceivedAt:        event.OccurredAt,
		CreatedAt:         now,
	}
	if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
		return err
	}

	invoice.PaidAmount = invoice.PaidAmount.Add(amount)
	invoice.BalanceDue = invoice.TotalAmount.Sub(invoice.PaidAmount)
	if invoice.BalanceDue.LessThanOrEqual(decimal.Zero) {
		invoice.Status = invoicedomain.InvoiceStatusPaid
		invoice.PaidAt = &now
	} else {
		invoice.Status = invoicedomain.InvoiceStatusPartial
	}
	invoice.UpdatedAt = now

	return s.invoiceRepo.Update(ctx, tx, invoice)
}

func (s *Service) applySubscriptionStatus(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) error {
	agreement, err := s.agreementRepo.FindByProviderSubscription(ctx, tx, event.SubscriptionID)
	if err != nil {
		return err
	}
	if agreement == nil {
		return paymentdomain.ErrAgreementNotFound
	}

	now := s.clk.Now().UTC()
	agreement.PaymentStatus = event.SubscriptionStatus
	if event.SubscriptionStatus == agreementdomain.StatusCancelled {
		agreement.CancelledAt = &now
	}
	agreement.UpdatedAt = now

	return s.agreementRepo.Update(ctx, tx, agreement)
}

func validateEvent(event *paymentdomain.PaymentEvent) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return paymentdomain.ErrInvalidEvent
	}
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	if len(event.RawPayload) > 0 && !json.Valid(event.RawPayload) {
		return paymentdomain.ErrInvalidPayload
	}
	if event.OccurredAt.IsZero() {
		return paymentdomain.ErrInvalidEvent
	}

	switch event.Type {
	case paymentdomain.EventTypePaymentSucceeded:
		if event.AmountCents <= 0 {
			return paymentdomain.ErrInvalidAmount
		}
		if strings.TrimSpace(event.Currency) == "" {
			return paymentdomain.ErrInvalidCurrency
		}
	case paymentdomain.EventTypeSubscriptionUpdated:
		if strings.TrimSpace(event.SubscriptionID) == "" || event.SubscriptionStatus == "" {
			return paymentdomain.ErrInvalidEvent
		}
	default:
		return paymentdomain.ErrInvalidEvent
	}
	return nil
}
