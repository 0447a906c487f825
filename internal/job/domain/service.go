package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListJobRequest struct {
	PageToken    string
	PageSize     int32
	Status       string
	Trade        string
	CustomerID   string
	TechnicianID string
}

type ListJobFilter struct {
	Status       string
	Trade        string
	CustomerID   string
	TechnicianID string
}

type ListJobResponse struct {
	pagination.PageInfo
	Jobs []Job `json:"jobs"`
}

type CreateJobRequest struct {
	CustomerID     string
	Title          string
	Description    string
	Trade          string
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	TotalAmount    decimal.Decimal
}

type GetJobRequest struct {
	ID string
}

type AssignJobRequest struct {
	ID           string
	TechnicianID string
}

type UpdateJobStatusRequest struct {
	ID     string
	Status string
}

type Service interface {
	Create(context.Context, CreateJobRequest) (Job, error)
	List(context.Context, ListJobRequest) (ListJobResponse, error)
	GetByID(context.Context, GetJobRequest) (Job, error)
	Assign(context.Context, AssignJobRequest) (Job, error)
	UpdateStatus(context.Context, UpdateJobStatusRequest) (Job, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidTrade        = errors.New("invalid_trade")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrInvalidID           = errors.New("invalid_id")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrTechnicianNotFound  = errors.New("technician_not_found")
	ErrNotFound            = errors.New("not_found")
)
