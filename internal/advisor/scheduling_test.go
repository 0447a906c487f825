package advisor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldline/fieldline/internal/advisor"
)

func TestSuggestScheduleFallbackSkipsWeekends(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	// 2025-06-06 is a Friday.
	resp, err := svc.SuggestSchedule(context.Background(), advisor.SchedulingRequest{
		RequestedDate: "2025-06-06",
		Trade:         "hvac",
		DurationHours: 2,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(resp.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(resp.Slots))
	}

	wantDates := []string{"2025-06-06", "2025-06-06", "2025-06-09", "2025-06-09", "2025-06-10", "2025-06-10"}
	for i, slot := range resp.Slots {
		if slot.Date != wantDates[i] {
			t.Fatalf("slot %d: date %s, want %s", i, slot.Date, wantDates[i])
		}
	}
	if resp.Slots[0].Window != "08:00-12:00" || resp.Slots[1].Window != "13:00-17:00" {
		t.Fatalf("windows wrong: %+v", resp.Slots[:2])
	}
}

func TestSuggestScheduleRejectsBadDate(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	if _, err := svc.SuggestSchedule(context.Background(), advisor.SchedulingRequest{RequestedDate: "June 6"}); !errors.Is(err, advisor.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSuggestScheduleDropsUnparseableModelSlots(t *testing.T) {
	f := newAdvisorFixture()
	client := &stubClient{response: `{"slots":[{"date":"soonish"},{"date":"2025-06-09","window":"09:00-11:00","reason":"First open slot."}]}`}
	svc := f.service(t, client)

	resp, err := svc.SuggestSchedule(context.Background(), advisor.SchedulingRequest{RequestedDate: "2025-06-06"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(resp.Slots) != 1 {
		t.Fatalf("expected 1 valid slot, got %d", len(resp.Slots))
	}
	if resp.Slots[0].Window != "09:00-11:00" || resp.Slots[0].Reason != "First open slot." {
		t.Fatalf("slot not merged: %+v", resp.Slots[0])
	}
}

func TestSuggestScheduleAllInvalidModelSlotsFallBack(t *testing.T) {
	f := newAdvisorFixture()
	client := &stubClient{response: `{"slots":[{"date":"whenever"}]}`}
	svc := f.service(t, client)

	resp, err := svc.SuggestSchedule(context.Background(), advisor.SchedulingRequest{RequestedDate: "2025-06-02"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(resp.Slots) != 6 {
		t.Fatalf("expected fallback slots, got %d", len(resp.Slots))
	}
}
