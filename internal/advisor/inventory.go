package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/fieldline/fieldline/internal/config"
)

const forecastEndpoint = "inventory_forecast"

type ForecastItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CurrentStock    int64   `json:"current_stock"`
	ReorderPoint    int64   `json:"reorder_point"`
	AvgMonthlyUsage float64 `json:"avg_monthly_usage"`
}

type InventoryForecastRequest struct {
	Items []ForecastItem `json:"items"`
}

type ItemForecast struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	DaysUntilStockout int    `json:"days_until_stockout"`
	Urgency           string `json:"urgency"`
	SuggestedOrderQty int64  `json:"suggested_order_qty"`
	Note              string `json:"note,omitempty"`
}

type InventoryForecastResponse struct {
	Items []ItemForecast `json:"items"`
}

const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"

	// noUsageHorizonDays caps the stockout horizon for items with no
	// recorded usage so the response stays finite.
	noUsageHorizonDays = 365
)

type aiItemForecast struct {
	ItemID string  `json:"item_id"`
	Note   *string `json:"note"`
}

type aiForecastResponse struct {
	Items []aiItemForecast `json:"items"`
}

// InventoryForecast projects stockout dates from the linear usage rate.
// When the request carries no items the org's full inventory is used.
// Days, urgency and order quantities are always computed here; the
// model only contributes the advisory note.
func (s *Service) InventoryForecast(ctx context.Context, req InventoryForecastRequest) (InventoryForecastResponse, error) {
	items := req.Items
	if len(items) == 0 {
		stored, err := s.inventory.ListAll(ctx)
		if err != nil {
			return InventoryForecastResponse{}, err
		}
		for _, it := range stored {
			usage, _ := it.AvgMonthlyUsage.Float64()
			items = append(items, ForecastItem{
				ID:              it.ID.String(),
				Name:            it.Name,
				CurrentStock:    it.CurrentStock,
				ReorderPoint:    it.ReorderPoint,
				AvgMonthlyUsage: usage,
			})
		}
	}
	if len(items) == 0 {
		return InventoryForecastResponse{Items: []ItemForecast{}}, nil
	}

	cfg := s.thresholds()
	resp := s.forecastFallback(items, cfg)

	payload, err := json.Marshal(resp.Items)
	if err != nil {
		s.record(forecastEndpoint, outcomeFallback)
		return resp, nil
	}

	var parsed aiForecastResponse
	ok := s.complete(ctx, forecastEndpoint,
		"You are an inventory planner for a field-service company. Respond with JSON only.",
		fmt.Sprintf(`Write one short reorder note per item.

Forecast: %s

Respond with {"items":[{"item_id":"...","note":"..."}]}`, payload),
		&parsed,
	)
	if !ok {
		s.record(forecastEndpoint, outcomeFallback)
		return resp, nil
	}

	notes := make(map[string]string, len(parsed.Items))
	for _, row := range parsed.Items {
		if row.Note != nil && *row.Note != "" {
			notes[row.ItemID] = *row.Note
		}
	}
	for i := range resp.Items {
		if note, found := notes[resp.Items[i].ItemID]; found {
			resp.Items[i].Note = note
		}
	}
	s.record(forecastEndpoint, outcomeAI)
	return resp, nil
}

func (s *Service) forecastFallback(items []ForecastItem, cfg config.AdvisorConfig) InventoryForecastResponse {
	out := InventoryForecastResponse{Items: make([]ItemForecast, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, ItemForecast{
			ItemID:            it.ID,
			Name:              it.Name,
			DaysUntilStockout: daysUntilStockout(it.CurrentStock, it.AvgMonthlyUsage),
			Urgency:           stockoutUrgency(daysUntilStockout(it.CurrentStock, it.AvgMonthlyUsage), cfg),
			SuggestedOrderQty: suggestedOrderQty(it.CurrentStock, it.ReorderPoint),
		})
	}
	return out
}

func daysUntilStockout(stock int64, monthlyUsage float64) int {
	if monthlyUsage <= 0 {
		return noUsageHorizonDays
	}
	daily := monthlyUsage / 30
	return int(math.Floor(float64(stock) / daily))
}

func stockoutUrgency(days int, cfg config.AdvisorConfig) string {
	switch {
	case days <= cfg.StockoutCriticalDays:
		return UrgencyCritical
	case days <= cfg.StockoutHighDays:
		return UrgencyHigh
	case days <= cfg.StockoutMediumDays:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func suggestedOrderQty(stock, reorderPoint int64) int64 {
	qty := reorderPoint*2 - stock
	if qty < 0 {
		return 0
	}
	return qty
}
