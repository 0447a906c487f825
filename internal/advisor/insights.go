package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fieldline/fieldline/internal/config"
)

const insightsEndpoint = "customer_insights"

type InsightCustomer struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TotalSpend    float64    `json:"total_spend"`
	JobCount      int64      `json:"job_count"`
	LastServiceAt *time.Time `json:"last_service_at,omitempty"`
}

type CustomerInsightsRequest struct {
	Customers []InsightCustomer `json:"customers"`
}

type CustomerInsight struct {
	CustomerID     string `json:"customer_id"`
	Name           string `json:"name"`
	Segment        string `json:"segment"`
	HealthScore    int    `json:"health_score"`
	Recommendation string `json:"recommendation"`
}

type InsightsSummary struct {
	TotalCustomers     int     `json:"total_customers"`
	HighValueCount     int     `json:"high_value_count"`
	AtRiskCount        int     `json:"at_risk_count"`
	NewCount           int     `json:"new_count"`
	AverageHealthScore float64 `json:"average_health_score"`
}

type CustomerInsightsResponse struct {
	Summary   InsightsSummary   `json:"summary"`
	Customers []CustomerInsight `json:"customers"`
}

const (
	SegmentHighValue = "high_value"
	SegmentAtRisk    = "at_risk"
	SegmentNew       = "new"
	SegmentRegular   = "regular"
)

// aiInsight carries pointer fields so missing model output can be told
// apart from zero values during normalization.
type aiInsight struct {
	CustomerID     string  `json:"customer_id"`
	Segment        *string `json:"segment"`
	HealthScore    *int    `json:"health_score"`
	Recommendation *string `json:"recommendation"`
}

type aiInsightsResponse struct {
	Customers []aiInsight `json:"customers"`
}

// CustomerInsights segments a customer list by spend and recency. An
// empty input yields the all-zero summary without touching the model.
func (s *Service) CustomerInsights(ctx context.Context, req CustomerInsightsRequest) (CustomerInsightsResponse, error) {
	if len(req.Customers) == 0 {
		return CustomerInsightsResponse{Customers: []CustomerInsight{}}, nil
	}

	cfg := s.thresholds()
	fallback := s.insightsFallback(req.Customers, cfg)

	payload, err := json.Marshal(req.Customers)
	if err != nil {
		s.record(insightsEndpoint, outcomeFallback)
		return fallback, nil
	}

	var parsed aiInsightsResponse
	ok := s.complete(ctx, insightsEndpoint,
		"You are a field-service business analyst. Respond with JSON only, no prose.",
		fmt.Sprintf(`Segment these customers and score their health.

Customers: %s

Respond with {"customers":[{"customer_id":"...","segment":"high_value|at_risk|new|regular","health_score":0-100,"recommendation":"..."}]}`, payload),
		&parsed,
	)
	if !ok {
		s.record(insightsEndpoint, outcomeFallback)
		return fallback, nil
	}

	resp := s.normalizeInsights(req.Customers, parsed, fallback, cfg)
	s.record(insightsEndpoint, outcomeAI)
	return resp, nil
}

func (s *Service) insightsFallback(customers []InsightCustomer, cfg config.AdvisorConfig) CustomerInsightsResponse {
	now := s.clock.Now()
	out := CustomerInsightsResponse{Customers: make([]CustomerInsight, 0, len(customers))}
	for _, c := range customers {
		segment := SegmentRegular
		switch {
		case c.TotalSpend >= cfg.HighValueSpend:
			segment = SegmentHighValue
		case c.LastServiceAt != nil && now.Sub(*c.LastServiceAt) > time.Duration(cfg.AtRiskDays)*24*time.Hour:
			segment = SegmentAtRisk
		case c.JobCount <= 1:
			segment = SegmentNew
		}
		out.Customers = append(out.Customers, CustomerInsight{
			CustomerID:     c.ID,
			Name:           c.Name,
			Segment:        segment,
			HealthScore:    cfg.DefaultHealthScore,
			Recommendation: defaultRecommendation(segment),
		})
	}
	out.Summary = summarizeInsights(out.Customers)
	return out
}

// normalizeInsights merges model output over the fallback so every input
// customer gets a row even when the model skips or invents entries.
func (s *Service) normalizeInsights(customers []InsightCustomer, parsed aiInsightsResponse, fallback CustomerInsightsResponse, cfg config.AdvisorConfig) CustomerInsightsResponse {
	byID := make(map[string]aiInsight, len(parsed.Customers))
	for _, row := range parsed.Customers {
		byID[row.CustomerID] = row
	}

	out := CustomerInsightsResponse{Customers: make([]CustomerInsight, 0, len(customers))}
	for i, c := range customers {
		insight := fallback.Customers[i]
		if row, found := byID[c.ID]; found {
			if row.Segment != nil && validSegment(*row.Segment) {
				insight.Segment = *row.Segment
			}
			if row.HealthScore != nil {
				insight.HealthScore = clampScore(*row.HealthScore)
			} else {
				insight.HealthScore = cfg.DefaultHealthScore
			}
			if row.Recommendation != nil && *row.Recommendation != "" {
				insight.Recommendation = *row.Recommendation
			}
		}
		out.Customers = append(out.Customers, insight)
	}
	out.Summary = summarizeInsights(out.Customers)
	return out
}

func summarizeInsights(rows []CustomerInsight) InsightsSummary {
	summary := InsightsSummary{TotalCustomers: len(rows)}
	if len(rows) == 0 {
		return summary
	}
	total := 0
	for _, row := range rows {
		total += row.HealthScore
		switch row.Segment {
		case SegmentHighValue:
			summary.HighValueCount++
		case SegmentAtRisk:
			summary.AtRiskCount++
		case SegmentNew:
			summary.NewCount++
		}
	}
	summary.AverageHealthScore = float64(total) / float64(len(rows))
	return summary
}

func validSegment(s string) bool {
	switch s {
	case SegmentHighValue, SegmentAtRisk, SegmentNew, SegmentRegular:
		return true
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func defaultRecommendation(segment string) string {
	switch segment {
	case SegmentHighValue:
		return "Offer a service agreement to lock in recurring work."
	case SegmentAtRisk:
		return "Reach out with a maintenance check-in to re-engage."
	case SegmentNew:
		return "Follow up after the first job to earn a repeat visit."
	default:
		return "Keep the regular service cadence."
	}
}
