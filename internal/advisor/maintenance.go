package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const maintenanceEndpoint = "predictive_maintenance"

type MaintenanceReminder struct {
	CustomerID      string `json:"customer_id"`
	Name            string `json:"name"`
	LastServiceAt   string `json:"last_service_at"`
	NextServiceDue  string `json:"next_service_due"`
	DaysOverdue     int    `json:"days_overdue"`
	Risk            string `json:"risk"`
	SuggestedAction string `json:"suggested_action"`
}

type MaintenanceResponse struct {
	Reminders []MaintenanceReminder `json:"reminders"`
}

const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

type aiMaintenanceRow struct {
	CustomerID      string  `json:"customer_id"`
	SuggestedAction *string `json:"suggested_action"`
}

type aiMaintenanceResponse struct {
	Reminders []aiMaintenanceRow `json:"reminders"`
}

// MaintenanceReminders lists customers whose last service is older than
// the maintenance interval. Due dates and risk come from the interval
// arithmetic; the model only phrases the outreach suggestion.
func (s *Service) MaintenanceReminders(ctx context.Context) (MaintenanceResponse, error) {
	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return MaintenanceResponse{}, err
	}

	cfg := s.thresholds()
	interval := time.Duration(cfg.MaintenanceIntervalDays) * 24 * time.Hour
	now := s.clock.Now()

	resp := MaintenanceResponse{Reminders: []MaintenanceReminder{}}
	for _, c := range customers {
		if c.LastServiceAt == nil {
			continue
		}
		due := c.LastServiceAt.Add(interval)
		if due.After(now) {
			continue
		}
		overdue := int(now.Sub(due).Hours() / 24)
		resp.Reminders = append(resp.Reminders, MaintenanceReminder{
			CustomerID:      c.ID.String(),
			Name:            c.Name,
			LastServiceAt:   c.LastServiceAt.Format(scheduleDateLayout),
			NextServiceDue:  due.Format(scheduleDateLayout),
			DaysOverdue:     overdue,
			Risk:            maintenanceRisk(overdue, cfg.MaintenanceIntervalDays),
			SuggestedAction: "Schedule a routine maintenance visit.",
		})
	}
	if len(resp.Reminders) == 0 {
		return resp, nil
	}

	payload, err := json.Marshal(resp.Reminders)
	if err != nil {
		s.record(maintenanceEndpoint, outcomeFallback)
		return resp, nil
	}

	var parsed aiMaintenanceResponse
	ok := s.complete(ctx, maintenanceEndpoint,
		"You are a field-service retention specialist. Respond with JSON only.",
		fmt.Sprintf(`Write one short outreach suggestion per overdue customer.

Reminders: %s

Respond with {"reminders":[{"customer_id":"...","suggested_action":"..."}]}`, payload),
		&parsed,
	)
	if !ok {
		s.record(maintenanceEndpoint, outcomeFallback)
		return resp, nil
	}

	actions := make(map[string]string, len(parsed.Reminders))
	for _, row := range parsed.Reminders {
		if row.SuggestedAction != nil && *row.SuggestedAction != "" {
			actions[row.CustomerID] = *row.SuggestedAction
		}
	}
	for i := range resp.Reminders {
		if action, found := actions[resp.Reminders[i].CustomerID]; found {
			resp.Reminders[i].SuggestedAction = action
		}
	}
	s.record(maintenanceEndpoint, outcomeAI)
	return resp, nil
}

// maintenanceRisk grades how far past the service interval a customer
// has drifted. A full extra interval is high risk, half is medium.
func maintenanceRisk(daysOverdue, intervalDays int) string {
	switch {
	case daysOverdue >= intervalDays:
		return RiskHigh
	case daysOverdue >= intervalDays/2:
		return RiskMedium
	default:
		return RiskLow
	}
}
