package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	agreementrepo "github.com/fieldline/fieldline/internal/agreement/repository"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
	invoicerepo "github.com/fieldline/fieldline/internal/invoice/repository"
	paymentdomain "github.com/fieldline/fieldline/internal/payment/domain"
	paymentrepo "github.com/fieldline/fieldline/internal/payment/repository"
	paymentservice "github.com/fieldline/fieldline/internal/payment/service"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:paymem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	models := []any{
		&paymentdomain.EventRecord{},
		&paymentdomain.Payment{},
		&invoicedomain.Invoice{},
		&agreementdomain.Agreement{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, now time.Time) (*paymentservice.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(11)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := paymentservice.NewService(paymentservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fixedClock{now: now},
		Repo:          paymentrepo.Provide(),
		InvoiceRepo:   invoicerepo.Provide(),
		AgreementRepo: agreementrepo.Provide(),
	})
	return svc, node
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, total int64) *invoicedomain.Invoice {
	t.Helper()

	now := time.Now().UTC()
	inv := invoicedomain.Invoice{
		ID:          node.Generate(),
		OrgID:       node.Generate(),
		CustomerID:  node.Generate(),
		Status:      invoicedomain.InvoiceStatusSent,
		TotalAmount: decimal.NewFromInt(total),
		BalanceDue:  decimal.NewFromInt(total),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return &inv
}

func paymentEvent(invoiceID snowflake.ID, eventID string, amountCents int64, occurredAt time.Time) *paymentdomain.PaymentEvent {
	return &paymentdomain.PaymentEvent{
		Provider:          "stripe",
		ProviderEventID:   eventID,
		ProviderPaymentID: "pi_" + eventID,
		Type:              paymentdomain.EventTypePaymentSucceeded,
		InvoiceID:         &invoiceID,
		AmountCents:       amountCents,
		Currency:          "usd",
		OccurredAt:        occurredAt,
		RawPayload:        []byte(`{}`),
	}
}

func TestProcessEventFullPaymentMarksInvoicePaid(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)
	inv := seedInvoice(t, db, node, 120)

	if err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_full", 12000, now)); err != nil {
		t.Fatalf("process event: %v", err)
	}

	var got invoicedomain.Invoice
	if err := db.First(&got, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if got.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("status: got %s, want PAID", got.Status)
	}
	if !got.BalanceDue.IsZero() {
		t.Fatalf("balance due: got %s, want 0", got.BalanceDue)
	}
	if got.PaidAt == nil {
		t.Fatalf("paid_at not stamped")
	}

	var payments int64
	if err := db.Model(&paymentdomain.Payment{}).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if payments != 1 {
		t.Fatalf("payments recorded: got %d, want 1", payments)
	}
}

func TestProcessEventPartialPayment(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)
	inv := seedInvoice(t, db, node, 120)

	if err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_partial", 5000, now)); err != nil {
		t.Fatalf("process event: %v", err)
	}

	var got invoicedomain.Invoice
	if err := db.First(&got, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if got.Status != invoicedomain.InvoiceStatusPartial {
		t.Fatalf("status: got %s, want PARTIAL", got.Status)
	}
	if got.BalanceDue.Cmp(decimal.NewFromInt(70)) != 0 {
		t.Fatalf("balance due: got %s, want 70", got.BalanceDue)
	}
	if got.PaidAmount.Cmp(decimal.NewFromInt(50)) != 0 {
		t.Fatalf("paid amount: got %s, want 50", got.PaidAmount)
	}
}

func TestProcessEventReplayIsRejected(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)
	inv := seedInvoice(t, db, node, 120)

	if err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_replay", 12000, now)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_replay", 12000, now))
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}

	var payments int64
	if err := db.Model(&paymentdomain.Payment{}).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if payments != 1 {
		t.Fatalf("replay must not double-apply: got %d payments", payments)
	}
}

// flakyMarkRepo fails MarkProcessed a configured number of times before
// delegating, standing in for a crash between applying an event and
// stamping it processed.
type flakyMarkRepo struct {
	paymentdomain.Repository
	failures int
}

func (r *flakyMarkRepo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection reset")
	}
	return r.Repository.MarkProcessed(ctx, db, id, at)
}

func TestProcessEventRetryAfterMarkFailureAppliesOnce(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	node, err := snowflake.NewNode(11)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := paymentservice.NewService(paymentservice.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fixedClock{now: now},
		Repo:          &flakyMarkRepo{Repository: paymentrepo.Provide(), failures: 1},
		InvoiceRepo:   invoicerepo.Provide(),
		AgreementRepo: agreementrepo.Provide(),
	})
	inv := seedInvoice(t, db, node, 120)

	if err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_retry", 12000, now)); err == nil {
		t.Fatalf("first delivery should surface the mark failure")
	}

	// The failed delivery must roll back with it everything it applied.
	var payments int64
	if err := db.Model(&paymentdomain.Payment{}).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if payments != 0 {
		t.Fatalf("rolled-back delivery left %d payments", payments)
	}

	// The provider retries the same event id. It must apply exactly once.
	if err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_retry", 12000, now)); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := db.Model(&paymentdomain.Payment{}).Count(&payments).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if payments != 1 {
		t.Fatalf("retry applied %d payments, want 1", payments)
	}

	var got invoicedomain.Invoice
	if err := db.First(&got, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if got.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("status: got %s, want PAID", got.Status)
	}

	err = svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_retry", 12000, now))
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}
}

func TestProcessEventVoidInvoiceRejected(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)
	inv := seedInvoice(t, db, node, 120)
	if err := db.Model(&invoicedomain.Invoice{}).Where("id = ?", inv.ID).Update("status", invoicedomain.InvoiceStatusVoid).Error; err != nil {
		t.Fatalf("void invoice: %v", err)
	}

	err := svc.ProcessEvent(context.Background(), paymentEvent(inv.ID, "evt_void", 12000, now))
	if !errors.Is(err, paymentdomain.ErrInvoiceNotOpen) {
		t.Fatalf("expected ErrInvoiceNotOpen, got %v", err)
	}
}

func TestProcessEventSubscriptionStatusUpdate(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)

	agr := agreementdomain.Agreement{
		ID:                     node.Generate(),
		OrgID:                  node.Generate(),
		CustomerID:             node.Generate(),
		PlanName:               "Gold",
		MonthlyAmount:          decimal.NewFromInt(99),
		PaymentStatus:          agreementdomain.StatusActive,
		ProviderSubscriptionID: "sub_123",
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := db.Create(&agr).Error; err != nil {
		t.Fatalf("seed agreement: %v", err)
	}

	event := &paymentdomain.PaymentEvent{
		Provider:           "stripe",
		ProviderEventID:    "evt_sub",
		Type:               paymentdomain.EventTypeSubscriptionUpdated,
		SubscriptionID:     "sub_123",
		SubscriptionStatus: agreementdomain.StatusPastDue,
		OccurredAt:         now,
	}
	if err := svc.ProcessEvent(context.Background(), event); err != nil {
		t.Fatalf("process event: %v", err)
	}

	var got agreementdomain.Agreement
	if err := db.First(&got, "id = ?", agr.ID).Error; err != nil {
		t.Fatalf("reload agreement: %v", err)
	}
	if got.PaymentStatus != agreementdomain.StatusPastDue {
		t.Fatalf("payment status: got %s, want past_due", got.PaymentStatus)
	}
}

func TestProcessEventValidation(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, node := newTestService(t, db, now)
	inv := seedInvoice(t, db, node, 120)

	event := paymentEvent(inv.ID, "evt_bad", 0, now)
	if err := svc.ProcessEvent(context.Background(), event); !errors.Is(err, paymentdomain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := svc.ProcessEvent(context.Background(), nil); !errors.Is(err, paymentdomain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}
