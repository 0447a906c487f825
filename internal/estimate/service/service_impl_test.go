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

	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	customerrepo "github.com/fieldline/fieldline/internal/customer/repository"
	"github.com/fieldline/fieldline/internal/estimate/domain"
	estimaterepo "github.com/fieldline/fieldline/internal/estimate/repository"
	"github.com/fieldline/fieldline/internal/estimate/service"
	"github.com/fieldline/fieldline/internal/orgcontext"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

const testOrgID int64 = 42

func setupFixture(t *testing.T, now time.Time) (*gorm.DB, domain.Service, context.Context, customerdomain.Customer) {
	t.Helper()

	dsn := fmt.Sprintf("file:estmem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Estimate{}, &customerdomain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(8)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := service.New(service.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fixedClock{now: now},
		Repo:         estimaterepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})

	customer := customerdomain.Customer{
		ID:        snowflake.ID(9001),
		OrgID:     snowflake.ID(testOrgID),
		Name:      "Ada Muller",
		Email:     "ada@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	ctx := orgcontext.WithOrgID(context.Background(), testOrgID)
	return db, svc, ctx, customer
}

func TestCreateEstimate(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	_, svc, ctx, customer := setupFixture(t, now)

	estimate, err := svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID:   customer.ID.String(),
		Description:  "Replace condenser",
		GoodAmount:   decimal.NewFromInt(500),
		BetterAmount: decimal.NewFromInt(650),
		BestAmount:   decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if estimate.Status != domain.StatusDraft {
		t.Fatalf("status = %q, want draft", estimate.Status)
	}
	if estimate.SelectedTier != "" {
		t.Fatalf("selected_tier = %q, want empty", estimate.SelectedTier)
	}

	_, err = svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID: customer.ID.String(),
		GoodAmount: decimal.NewFromInt(-1),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v", err)
	}

	_, err = svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID: "123456789",
		GoodAmount: decimal.NewFromInt(500),
	})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("unknown customer: got %v", err)
	}
}

func TestEstimateLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	_, svc, ctx, customer := setupFixture(t, now)

	estimate, err := svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID:   customer.ID.String(),
		GoodAmount:   decimal.NewFromInt(500),
		BetterAmount: decimal.NewFromInt(650),
		BestAmount:   decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Tier selection requires a sent estimate.
	_, err = svc.SelectTier(ctx, domain.SelectTierRequest{ID: estimate.ID.String(), Tier: "better"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("select on draft: got %v", err)
	}

	estimate, err = svc.Send(ctx, domain.SendEstimateRequest{ID: estimate.ID.String()})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if estimate.Status != domain.StatusSent {
		t.Fatalf("status = %q, want sent", estimate.Status)
	}

	_, err = svc.SelectTier(ctx, domain.SelectTierRequest{ID: estimate.ID.String(), Tier: "platinum"})
	if !errors.Is(err, domain.ErrInvalidTier) {
		t.Fatalf("bad tier: got %v", err)
	}

	estimate, err = svc.SelectTier(ctx, domain.SelectTierRequest{ID: estimate.ID.String(), Tier: " Better "})
	if err != nil {
		t.Fatalf("select tier: %v", err)
	}
	if estimate.Status != domain.StatusAccepted {
		t.Fatalf("status = %q, want accepted", estimate.Status)
	}
	if estimate.SelectedTier != domain.TierBetter {
		t.Fatalf("selected_tier = %q, want better", estimate.SelectedTier)
	}

	// Accepted estimates cannot be declined afterwards.
	_, err = svc.Decline(ctx, domain.DeclineEstimateRequest{ID: estimate.ID.String()})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("decline after accept: got %v", err)
	}
}

func TestDeclineEstimate(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	_, svc, ctx, customer := setupFixture(t, now)

	estimate, err := svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID: customer.ID.String(),
		GoodAmount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(ctx, domain.SendEstimateRequest{ID: estimate.ID.String()}); err != nil {
		t.Fatalf("send: %v", err)
	}

	estimate, err = svc.Decline(ctx, domain.DeclineEstimateRequest{ID: estimate.ID.String()})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if estimate.Status != domain.StatusDeclined {
		t.Fatalf("status = %q, want declined", estimate.Status)
	}
}

func TestEstimateTenantScoping(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	_, svc, ctx, customer := setupFixture(t, now)

	estimate, err := svc.Create(ctx, domain.CreateEstimateRequest{
		CustomerID: customer.ID.String(),
		GoodAmount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherOrg := orgcontext.WithOrgID(context.Background(), testOrgID+1)
	_, err = svc.GetByID(otherOrg, domain.GetEstimateRequest{ID: estimate.ID.String()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-tenant read: got %v", err)
	}
}
