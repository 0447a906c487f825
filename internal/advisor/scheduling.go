package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const schedulingEndpoint = "smart_scheduling"

var ErrInvalidDate = errors.New("invalid_date")

const scheduleDateLayout = "2006-01-02"

type SchedulingRequest struct {
	RequestedDate string `json:"requested_date"`
	Trade         string `json:"trade"`
	DurationHours int    `json:"duration_hours"`
}

type ScheduleSlot struct {
	Date   string `json:"date"`
	Window string `json:"window"`
	Reason string `json:"reason,omitempty"`
}

type SchedulingResponse struct {
	Slots []ScheduleSlot `json:"slots"`
}

type aiSlot struct {
	Date   string  `json:"date"`
	Window *string `json:"window"`
	Reason *string `json:"reason"`
}

type aiSchedulingResponse struct {
	Slots []aiSlot `json:"slots"`
}

var scheduleWindows = []string{"08:00-12:00", "13:00-17:00"}

// SuggestSchedule proposes appointment slots near the requested date.
// The fallback offers morning and afternoon windows on the next three
// business days starting at the requested date.
func (s *Service) SuggestSchedule(ctx context.Context, req SchedulingRequest) (SchedulingResponse, error) {
	requested, err := time.Parse(scheduleDateLayout, req.RequestedDate)
	if err != nil {
		return SchedulingResponse{}, ErrInvalidDate
	}

	resp := s.scheduleFallback(requested)

	var parsed aiSchedulingResponse
	ok := s.complete(ctx, schedulingEndpoint,
		"You are a field-service dispatcher. Respond with JSON only.",
		fmt.Sprintf(`Suggest up to six appointment slots on business days starting %s for a %s job lasting about %d hours.

Respond with {"slots":[{"date":"YYYY-MM-DD","window":"HH:MM-HH:MM","reason":"..."}]}`,
			requested.Format(scheduleDateLayout), req.Trade, req.DurationHours),
		&parsed,
	)
	if !ok || len(parsed.Slots) == 0 {
		s.record(schedulingEndpoint, outcomeFallback)
		return resp, nil
	}

	slots := make([]ScheduleSlot, 0, len(parsed.Slots))
	for _, slot := range parsed.Slots {
		if _, err := time.Parse(scheduleDateLayout, slot.Date); err != nil {
			continue
		}
		out := ScheduleSlot{Date: slot.Date, Window: scheduleWindows[0]}
		if slot.Window != nil && *slot.Window != "" {
			out.Window = *slot.Window
		}
		if slot.Reason != nil {
			out.Reason = *slot.Reason
		}
		slots = append(slots, out)
	}
	if len(slots) == 0 {
		s.record(schedulingEndpoint, outcomeFallback)
		return resp, nil
	}

	s.record(schedulingEndpoint, outcomeAI)
	return SchedulingResponse{Slots: slots}, nil
}

func (s *Service) scheduleFallback(requested time.Time) SchedulingResponse {
	out := SchedulingResponse{Slots: make([]ScheduleSlot, 0, 6)}
	day := requested
	for added := 0; added < 3; {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		for _, window := range scheduleWindows {
			out.Slots = append(out.Slots, ScheduleSlot{
				Date:   day.Format(scheduleDateLayout),
				Window: window,
			})
		}
		added++
		day = day.AddDate(0, 0, 1)
	}
	return out
}
