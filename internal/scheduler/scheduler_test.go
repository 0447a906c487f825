package scheduler_test

import (
	"context"
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
	"github.com/fieldline/fieldline/internal/scheduler"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:schedmem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&invoicedomain.Invoice{}, &agreementdomain.Agreement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestScheduler(t *testing.T, db *gorm.DB, clk *fakeClock) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.New(scheduler.Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         clk,
		InvoiceRepo:   invoicerepo.Provide(),
		AgreementRepo: agreementrepo.Provide(),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestNewSchedulerRequiresDependencies(t *testing.T) {
	_, err := scheduler.New(scheduler.Params{})
	if err != scheduler.ErrInvalidConfig {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMarkOverdueJobFlipsDueInvoices(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	clk := &fakeClock{now: now}
	s := newTestScheduler(t, db, clk)

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	orgID := node.Generate()

	longPast := now.AddDate(0, 0, -10)
	justDue := now.Add(-2 * time.Hour)
	future := now.AddDate(0, 0, 10)

	seed := []invoicedomain.Invoice{
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), Status: invoicedomain.InvoiceStatusSent, TotalAmount: decimal.NewFromInt(100), BalanceDue: decimal.NewFromInt(100), DueDate: &longPast},
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), Status: invoicedomain.InvoiceStatusPartial, TotalAmount: decimal.NewFromInt(200), BalanceDue: decimal.NewFromInt(50), DueDate: &longPast},
		// Inside the grace window, stays SENT.
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), Status: invoicedomain.InvoiceStatusSent, TotalAmount: decimal.NewFromInt(100), BalanceDue: decimal.NewFromInt(100), DueDate: &justDue},
		// Fully paid, stays PAID even though it is dated in the past.
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), Status: invoicedomain.InvoiceStatusPaid, TotalAmount: decimal.NewFromInt(100), BalanceDue: decimal.Zero, DueDate: &longPast},
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), Status: invoicedomain.InvoiceStatusSent, TotalAmount: decimal.NewFromInt(100), BalanceDue: decimal.NewFromInt(100), DueDate: &future},
	}
	for i := range seed {
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}

	if err := s.MarkOverdueJob(context.Background()); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}

	var overdue int64
	if err := db.Model(&invoicedomain.Invoice{}).Where("status = ?", invoicedomain.InvoiceStatusOverdue).Count(&overdue).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if overdue != 2 {
		t.Fatalf("overdue invoices: got %d, want 2", overdue)
	}

	var paid invoicedomain.Invoice
	if err := db.Where("status = ?", invoicedomain.InvoiceStatusPaid).First(&paid).Error; err != nil {
		t.Fatalf("paid invoice gone: %v", err)
	}
}

func TestLapsePastDueJobCancelsStaleAgreements(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	clk := &fakeClock{now: now}
	s := newTestScheduler(t, db, clk)

	node, err := snowflake.NewNode(8)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	orgID := node.Generate()

	stale := now.AddDate(0, 0, -20)
	fresh := now.AddDate(0, 0, -3)

	seed := []agreementdomain.Agreement{
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), PlanName: "Silver", MonthlyAmount: decimal.NewFromInt(49), PaymentStatus: agreementdomain.StatusPastDue, CreatedAt: stale, UpdatedAt: stale},
		// Recently past due, still inside the lapse window.
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), PlanName: "Gold", MonthlyAmount: decimal.NewFromInt(99), PaymentStatus: agreementdomain.StatusPastDue, CreatedAt: fresh, UpdatedAt: fresh},
		{ID: node.Generate(), OrgID: orgID, CustomerID: node.Generate(), PlanName: "Bronze", MonthlyAmount: decimal.NewFromInt(29), PaymentStatus: agreementdomain.StatusActive, CreatedAt: stale, UpdatedAt: stale},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed agreement: %v", err)
		}
	}

	if err := s.LapsePastDueJob(context.Background()); err != nil {
		t.Fatalf("lapse past due: %v", err)
	}

	var cancelled []agreementdomain.Agreement
	if err := db.Where("payment_status = ?", agreementdomain.StatusCancelled).Find(&cancelled).Error; err != nil {
		t.Fatalf("find cancelled: %v", err)
	}
	if len(cancelled) != 1 {
		t.Fatalf("cancelled agreements: got %d, want 1", len(cancelled))
	}
	if cancelled[0].PlanName != "Silver" {
		t.Fatalf("wrong agreement cancelled: %s", cancelled[0].PlanName)
	}
	if cancelled[0].CancelledAt == nil {
		t.Fatalf("cancelled_at not stamped")
	}
}

func TestRunOnceJoinsJobErrors(t *testing.T) {
	db := setupTestDB(t)
	clk := &fakeClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, db, clk)

	// Empty tables, both sweeps succeed.
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
}
