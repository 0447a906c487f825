package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
)

const dispatchEndpoint = "dispatch_optimizer"

var ErrNoTechnicians = errors.New("no_technicians")

type DispatchRequest struct {
	Trade       string `json:"trade"`
	Description string `json:"description"`
}

type DispatchCandidate struct {
	TechnicianID string `json:"technician_id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	Reason       string `json:"reason"`
}

type DispatchResponse struct {
	Recommended string              `json:"recommended_technician_id"`
	Candidates  []DispatchCandidate `json:"candidates"`
}

type aiDispatchResponse struct {
	Recommended *string `json:"recommended_technician_id"`
	Reason      *string `json:"reason"`
}

const (
	tradeMatchScore = 50
	baseActiveScore = 10
)

// OptimizeDispatch ranks the org's active technicians for a job. The
// score is always computed here from trade match and cost; the model
// may only re-pick the recommendation among the scored candidates.
func (s *Service) OptimizeDispatch(ctx context.Context, req DispatchRequest) (DispatchResponse, error) {
	technicians, err := s.technicians.ListActive(ctx)
	if err != nil {
		return DispatchResponse{}, err
	}
	if len(technicians) == 0 {
		return DispatchResponse{}, ErrNoTechnicians
	}

	resp := scoreDispatch(technicians, req.Trade)

	payload, err := json.Marshal(resp.Candidates)
	if err != nil {
		s.record(dispatchEndpoint, outcomeFallback)
		return resp, nil
	}

	var parsed aiDispatchResponse
	ok := s.complete(ctx, dispatchEndpoint,
		"You are a field-service dispatcher. Respond with JSON only.",
		fmt.Sprintf(`Pick the best technician for this job from the scored candidates.

Trade: %s
Job: %s
Candidates: %s

Respond with {"recommended_technician_id":"...","reason":"..."}`,
			req.Trade, req.Description, payload),
		&parsed,
	)
	if !ok || parsed.Recommended == nil {
		s.record(dispatchEndpoint, outcomeFallback)
		return resp, nil
	}

	for i := range resp.Candidates {
		if resp.Candidates[i].TechnicianID != *parsed.Recommended {
			continue
		}
		resp.Recommended = *parsed.Recommended
		if parsed.Reason != nil && *parsed.Reason != "" {
			resp.Candidates[i].Reason = *parsed.Reason
		}
		s.record(dispatchEndpoint, outcomeAI)
		return resp, nil
	}

	// The model picked an id outside the candidate set.
	s.record(dispatchEndpoint, outcomeFallback)
	return resp, nil
}

func scoreDispatch(technicians []techniciandomain.Technician, trade string) DispatchResponse {
	candidates := make([]DispatchCandidate, 0, len(technicians))
	for _, tech := range technicians {
		score := baseActiveScore
		reason := "available"
		if tradeMatches(tech.Skills, trade) {
			score += tradeMatchScore
			reason = fmt.Sprintf("skilled in %s", trade)
		}
		candidates = append(candidates, DispatchCandidate{
			TechnicianID: tech.ID.String(),
			Name:         tech.Name,
			Score:        score,
			Reason:       reason,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return DispatchResponse{
		Recommended: candidates[0].TechnicianID,
		Candidates:  candidates,
	}
}

func tradeMatches(skills, trade string) bool {
	if trade == "" {
		return false
	}
	for _, skill := range strings.Split(skills, ",") {
		if strings.EqualFold(strings.TrimSpace(skill), trade) {
			return true
		}
	}
	return false
}
