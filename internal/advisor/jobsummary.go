package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jobdomain "github.com/fieldline/fieldline/internal/job/domain"
)

const summaryEndpoint = "job_summary"

var ErrInvalidJob = errors.New("invalid_job")

type JobSummaryRequest struct {
	JobID string `json:"job_id"`
}

type JobSummaryResponse struct {
	JobID   string `json:"job_id"`
	Summary string `json:"summary"`
}

type aiSummaryResponse struct {
	Summary *string `json:"summary"`
}

// SummarizeJob produces a short customer-facing writeup of a job. The
// fallback composes the summary from the job's own fields.
func (s *Service) SummarizeJob(ctx context.Context, req JobSummaryRequest) (JobSummaryResponse, error) {
	if strings.TrimSpace(req.JobID) == "" {
		return JobSummaryResponse{}, ErrInvalidJob
	}

	job, err := s.jobs.GetByID(ctx, jobdomain.GetJobRequest{ID: req.JobID})
	if err != nil {
		return JobSummaryResponse{}, err
	}

	resp := JobSummaryResponse{
		JobID:   job.ID.String(),
		Summary: composeJobSummary(job),
	}

	var parsed aiSummaryResponse
	ok := s.complete(ctx, summaryEndpoint,
		"You are a field-service coordinator writing customer updates. Respond with JSON only.",
		fmt.Sprintf(`Summarize this job in two or three sentences for the customer.

Title: %s
Trade: %s
Status: %s
Description: %s

Respond with {"summary":"..."}`,
			job.Title, job.Trade, job.Status, job.Description),
		&parsed,
	)
	if !ok || parsed.Summary == nil || *parsed.Summary == "" {
		s.record(summaryEndpoint, outcomeFallback)
		return resp, nil
	}

	resp.Summary = *parsed.Summary
	s.record(summaryEndpoint, outcomeAI)
	return resp, nil
}

func composeJobSummary(job jobdomain.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s job %q is %s.", capitalize(job.Trade), job.Title, strings.ReplaceAll(job.Status, "_", " "))
	if job.ScheduledStart != nil {
		fmt.Fprintf(&b, " Scheduled for %s.", job.ScheduledStart.Format("Jan 2, 2006 at 3:04 PM"))
	}
	if job.CompletedAt != nil {
		fmt.Fprintf(&b, " Completed on %s.", job.CompletedAt.Format("Jan 2, 2006"))
	}
	if !job.TotalAmount.IsZero() {
		fmt.Fprintf(&b, " Total %s.", job.TotalAmount.StringFixed(2))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
