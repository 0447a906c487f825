package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"

	"github.com/fieldline/fieldline/internal/advisor"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
)

func dispatchTechnicians() []techniciandomain.Technician {
	return []techniciandomain.Technician{
		{ID: snowflake.ID(101), Name: "Rosa", Skills: "hvac, electrical", IsActive: true},
		{ID: snowflake.ID(102), Name: "Dev", Skills: "plumbing", IsActive: true},
	}
}

func TestOptimizeDispatchScoresTradeMatch(t *testing.T) {
	f := newAdvisorFixture()
	f.technicians.active = dispatchTechnicians()
	svc := f.service(t, nil)

	resp, err := svc.OptimizeDispatch(context.Background(), advisor.DispatchRequest{Trade: "hvac"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Recommended != "101" {
		t.Fatalf("recommended: got %s, want 101", resp.Recommended)
	}
	if resp.Candidates[0].Score != 60 {
		t.Fatalf("trade match score: got %d, want 60", resp.Candidates[0].Score)
	}
	if resp.Candidates[1].Score != 10 {
		t.Fatalf("base score: got %d, want 10", resp.Candidates[1].Score)
	}
}

func TestOptimizeDispatchNoTechnicians(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	if _, err := svc.OptimizeDispatch(context.Background(), advisor.DispatchRequest{Trade: "hvac"}); !errors.Is(err, advisor.ErrNoTechnicians) {
		t.Fatalf("expected ErrNoTechnicians, got %v", err)
	}
}

func TestOptimizeDispatchModelRepicksWithinCandidates(t *testing.T) {
	f := newAdvisorFixture()
	f.technicians.active = dispatchTechnicians()
	client := &stubClient{response: `{"recommended_technician_id":"102","reason":"Closer to the job site."}`}
	svc := f.service(t, client)

	resp, err := svc.OptimizeDispatch(context.Background(), advisor.DispatchRequest{Trade: "hvac"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Recommended != "102" {
		t.Fatalf("model pick not honored: %s", resp.Recommended)
	}
	var picked advisor.DispatchCandidate
	for _, cand := range resp.Candidates {
		if cand.TechnicianID == "102" {
			picked = cand
		}
	}
	if picked.Reason != "Closer to the job site." {
		t.Fatalf("reason not merged: %q", picked.Reason)
	}
}

func TestOptimizeDispatchRejectsUnknownPick(t *testing.T) {
	f := newAdvisorFixture()
	f.technicians.active = dispatchTechnicians()
	client := &stubClient{response: fmt.Sprintf(`{"recommended_technician_id":"%s"}`, "999")}
	svc := f.service(t, client)

	resp, err := svc.OptimizeDispatch(context.Background(), advisor.DispatchRequest{Trade: "hvac"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Recommended != "101" {
		t.Fatalf("pick outside candidate set must keep fallback, got %s", resp.Recommended)
	}
}
