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
	"github.com/fieldline/fieldline/internal/job/domain"
	jobrepo "github.com/fieldline/fieldline/internal/job/repository"
	"github.com/fieldline/fieldline/internal/job/service"
	"github.com/fieldline/fieldline/internal/orgcontext"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
	technicianrepo "github.com/fieldline/fieldline/internal/technician/repository"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:jobmem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	models := []any{
		&domain.Job{},
		&customerdomain.Customer{},
		&techniciandomain.Technician{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, now time.Time) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return service.New(service.Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          fixedClock{now: now},
		Repo:           jobrepo.Provide(),
		CustomerRepo:   customerrepo.Provide(),
		TechnicianRepo: technicianrepo.Provide(),
	})
}

const testOrgID int64 = 42

func orgContext(t *testing.T) context.Context {
	t.Helper()
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func seedCustomer(t *testing.T, db *gorm.DB, now time.Time) customerdomain.Customer {
	t.Helper()

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
	return customer
}

func seedTechnician(t *testing.T, db *gorm.DB, now time.Time) techniciandomain.Technician {
	t.Helper()

	technician := techniciandomain.Technician{
		ID:        snowflake.ID(7001),
		OrgID:     snowflake.ID(testOrgID),
		Name:      "Rosa Vega",
		Skills:    "hvac",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&technician).Error; err != nil {
		t.Fatalf("seed technician: %v", err)
	}
	return technician
}

func TestCreateJob(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	db := setupTestDB(t)
	svc := newTestService(t, db, now)
	customer := seedCustomer(t, db, now)

	start := now.Add(24 * time.Hour)
	job, err := svc.Create(orgContext(t), domain.CreateJobRequest{
		CustomerID:     customer.ID.String(),
		Title:          "  AC compressor replacement ",
		Trade:          "HVAC",
		ScheduledStart: &start,
		TotalAmount:    decimal.NewFromInt(1200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected generated job id")
	}
	if job.Title != "AC compressor replacement" {
		t.Fatalf("title = %q", job.Title)
	}
	if job.Trade != "hvac" {
		t.Fatalf("trade = %q", job.Trade)
	}
	if job.Status != domain.StatusScheduled {
		t.Fatalf("status = %q, want scheduled", job.Status)
	}
	if !job.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v", job.CreatedAt)
	}
}

func TestCreateJobValidation(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	db := setupTestDB(t)
	svc := newTestService(t, db, now)
	customer := seedCustomer(t, db, now)

	_, err := svc.Create(context.Background(), domain.CreateJobRequest{
		CustomerID: customer.ID.String(),
		Title:      "No org on the context",
		Trade:      "hvac",
	})
	if !errors.Is(err, domain.ErrInvalidOrganization) {
		t.Fatalf("missing org: got %v", err)
	}

	_, err = svc.Create(orgContext(t), domain.CreateJobRequest{
		CustomerID: customer.ID.String(),
		Title:      "   ",
		Trade:      "hvac",
	})
	if !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("blank title: got %v", err)
	}

	_, err = svc.Create(orgContext(t), domain.CreateJobRequest{
		CustomerID: customer.ID.String(),
		Title:      "Water heater swap",
		Trade:      "carpentry",
	})
	if !errors.Is(err, domain.ErrInvalidTrade) {
		t.Fatalf("bad trade: got %v", err)
	}

	_, err = svc.Create(orgContext(t), domain.CreateJobRequest{
		CustomerID: "123456789",
		Title:      "Water heater swap",
		Trade:      "plumbing",
	})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("unknown customer: got %v", err)
	}
}

func TestAssignJob(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	db := setupTestDB(t)
	svc := newTestService(t, db, now)
	customer := seedCustomer(t, db, now)
	technician := seedTechnician(t, db, now)
	ctx := orgContext(t)

	job, err := svc.Create(ctx, domain.CreateJobRequest{
		CustomerID: customer.ID.String(),
		Title:      "Panel upgrade",
		Trade:      "electrical",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assigned, err := svc.Assign(ctx, domain.AssignJobRequest{
		ID:           job.ID.String(),
		TechnicianID: technician.ID.String(),
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.TechnicianID == nil || *assigned.TechnicianID != technician.ID {
		t.Fatalf("technician_id = %v", assigned.TechnicianID)
	}

	_, err = svc.Assign(ctx, domain.AssignJobRequest{
		ID:           job.ID.String(),
		TechnicianID: "123456789",
	})
	if !errors.Is(err, domain.ErrTechnicianNotFound) {
		t.Fatalf("unknown technician: got %v", err)
	}
}

func TestUpdateJobStatusTransitions(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	db := setupTestDB(t)
	svc := newTestService(t, db, now)
	customer := seedCustomer(t, db, now)
	ctx := orgContext(t)

	job, err := svc.Create(ctx, domain.CreateJobRequest{
		CustomerID:  customer.ID.String(),
		Title:       "Drain cleanout",
		Trade:       "plumbing",
		TotalAmount: decimal.NewFromInt(350),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	job, err = svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "in_progress"})
	if err != nil {
		t.Fatalf("to in_progress: %v", err)
	}
	if job.Status != domain.StatusInProgress {
		t.Fatalf("status = %q", job.Status)
	}

	job, err = svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "completed"})
	if err != nil {
		t.Fatalf("to completed: %v", err)
	}
	if job.CompletedAt == nil || !job.CompletedAt.Equal(now) {
		t.Fatalf("completed_at = %v", job.CompletedAt)
	}

	// Completion is terminal.
	_, err = svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "scheduled"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("reopen completed: got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "paused"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("unknown status: got %v", err)
	}
}

func TestCompletedJobRollsIntoCustomerSpend(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	db := setupTestDB(t)
	svc := newTestService(t, db, now)
	customer := seedCustomer(t, db, now)
	ctx := orgContext(t)

	job, err := svc.Create(ctx, domain.CreateJobRequest{
		CustomerID:  customer.ID.String(),
		Title:       "Furnace tune-up",
		Trade:       "hvac",
		TotalAmount: decimal.NewFromInt(420),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "in_progress"}); err != nil {
		t.Fatalf("to in_progress: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, domain.UpdateJobStatusRequest{ID: job.ID.String(), Status: "completed"}); err != nil {
		t.Fatalf("to completed: %v", err)
	}

	var got customerdomain.Customer
	if err := db.First(&got, "id = ?", customer.ID).Error; err != nil {
		t.Fatalf("reload customer: %v", err)
	}
	if !got.TotalSpend.Equal(decimal.NewFromInt(420)) {
		t.Fatalf("total_spend = %s", got.TotalSpend)
	}
	if got.JobCount != 1 {
		t.Fatalf("job_count = %d", got.JobCount)
	}
	if got.LastServiceAt == nil || !got.LastServiceAt.Equal(now) {
		t.Fatalf("last_service_at = %v", got.LastServiceAt)
	}
}
