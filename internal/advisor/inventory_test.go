package advisor_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/internal/advisor"
	inventorydomain "github.com/fieldline/fieldline/internal/inventory/domain"
)

func TestInventoryForecastFallbackMath(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	resp, err := svc.InventoryForecast(context.Background(), advisor.InventoryForecastRequest{
		Items: []advisor.ForecastItem{
			{ID: "1", Name: "Run capacitor", CurrentStock: 10, ReorderPoint: 15, AvgMonthlyUsage: 60},
			{ID: "2", Name: "Copper fitting", CurrentStock: 100, ReorderPoint: 20, AvgMonthlyUsage: 30},
			{ID: "3", Name: "Legacy thermostat", CurrentStock: 4, ReorderPoint: 2, AvgMonthlyUsage: 0},
		},
	})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(resp.Items))
	}

	// 10 units at 2/day runs out in 5 days.
	first := resp.Items[0]
	if first.DaysUntilStockout != 5 {
		t.Fatalf("days until stockout: got %d, want 5", first.DaysUntilStockout)
	}
	if first.Urgency != advisor.UrgencyCritical {
		t.Fatalf("urgency: got %s, want critical", first.Urgency)
	}
	if first.SuggestedOrderQty != 20 {
		t.Fatalf("order qty: got %d, want 20", first.SuggestedOrderQty)
	}

	second := resp.Items[1]
	if second.DaysUntilStockout != 100 {
		t.Fatalf("days until stockout: got %d, want 100", second.DaysUntilStockout)
	}
	if second.Urgency != advisor.UrgencyLow {
		t.Fatalf("urgency: got %s, want low", second.Urgency)
	}
	if second.SuggestedOrderQty != 0 {
		t.Fatalf("order qty: got %d, want 0", second.SuggestedOrderQty)
	}

	// No usage caps the horizon instead of dividing by zero.
	third := resp.Items[2]
	if third.DaysUntilStockout != 365 {
		t.Fatalf("days until stockout: got %d, want 365", third.DaysUntilStockout)
	}
}

func TestInventoryForecastLoadsStoredItems(t *testing.T) {
	f := newAdvisorFixture()
	f.inventory.items = []inventorydomain.Item{
		{Name: "Breaker 20A", CurrentStock: 6, ReorderPoint: 10, AvgMonthlyUsage: decimal.NewFromInt(30)},
	}
	svc := f.service(t, nil)

	resp, err := svc.InventoryForecast(context.Background(), advisor.InventoryForecastRequest{})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected stored inventory to be used, got %d items", len(resp.Items))
	}
	if resp.Items[0].DaysUntilStockout != 6 {
		t.Fatalf("days until stockout: got %d, want 6", resp.Items[0].DaysUntilStockout)
	}
}

func TestInventoryForecastModelAddsNotesOnly(t *testing.T) {
	f := newAdvisorFixture()
	client := &stubClient{response: `{"items":[{"item_id":"1","note":"Order before the summer rush.","days_until_stockout":1}]}`}
	svc := f.service(t, client)

	resp, err := svc.InventoryForecast(context.Background(), advisor.InventoryForecastRequest{
		Items: []advisor.ForecastItem{
			{ID: "1", Name: "Run capacitor", CurrentStock: 60, ReorderPoint: 15, AvgMonthlyUsage: 30},
		},
	})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if resp.Items[0].Note != "Order before the summer rush." {
		t.Fatalf("note not merged: %q", resp.Items[0].Note)
	}
	if resp.Items[0].DaysUntilStockout != 60 {
		t.Fatalf("model must not change the stockout horizon: got %d", resp.Items[0].DaysUntilStockout)
	}
}
