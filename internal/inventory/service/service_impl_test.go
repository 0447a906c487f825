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

	"github.com/fieldline/fieldline/internal/inventory/domain"
	inventoryrepo "github.com/fieldline/fieldline/internal/inventory/repository"
	"github.com/fieldline/fieldline/internal/inventory/service"
	"github.com/fieldline/fieldline/internal/orgcontext"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

const testOrgID int64 = 42

func newFixture(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:invmem_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	svc := service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fixedClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
		Repo:  inventoryrepo.Provide(),
	})
	return svc, orgcontext.WithOrgID(context.Background(), testOrgID)
}

func TestAdjustStock(t *testing.T) {
	svc, ctx := newFixture(t)

	item, err := svc.Create(ctx, domain.CreateItemRequest{
		Name:            "Run capacitor 45/5",
		SKU:             "CAP-455",
		Category:        "hvac",
		CurrentStock:    10,
		ReorderPoint:    4,
		UnitCost:        decimal.RequireFromString("12.50"),
		AvgMonthlyUsage: decimal.NewFromInt(6),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err = svc.AdjustStock(ctx, domain.AdjustStockRequest{ID: item.ID.String(), Delta: -7})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if item.CurrentStock != 3 {
		t.Fatalf("current_stock = %d, want 3", item.CurrentStock)
	}

	// Stock can never go negative; the whole adjustment is rejected.
	_, err = svc.AdjustStock(ctx, domain.AdjustStockRequest{ID: item.ID.String(), Delta: -4})
	if !errors.Is(err, domain.ErrInvalidStock) {
		t.Fatalf("oversized draw: got %v", err)
	}

	got, err := svc.GetByID(ctx, domain.GetItemRequest{ID: item.ID.String()})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStock != 3 {
		t.Fatalf("current_stock after rejected draw = %d, want 3", got.CurrentStock)
	}
}

func TestAdjustStockUnknownItem(t *testing.T) {
	svc, ctx := newFixture(t)

	_, err := svc.AdjustStock(ctx, domain.AdjustStockRequest{ID: "123456789", Delta: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown item: got %v", err)
	}

	_, err = svc.AdjustStock(ctx, domain.AdjustStockRequest{ID: "abc", Delta: 1})
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("bad id: got %v", err)
	}
}
