package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListEstimateRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	CustomerID string
}

type ListEstimateFilter struct {
	Status     string
	CustomerID string
}

type ListEstimateResponse struct {
	pagination.PageInfo
	Estimates []Estimate `json:"estimates"`
}

type CreateEstimateRequest struct {
	CustomerID   string
	JobID        string
	Description  string
	GoodAmount   decimal.Decimal
	BetterAmount decimal.Decimal
	BestAmount   decimal.Decimal
}

type GetEstimateRequest struct {
	ID string
}

type SendEstimateRequest struct {
	ID string
}

type SelectTierRequest struct {
	ID   string
	Tier string
}

type DeclineEstimateRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateEstimateRequest) (Estimate, error)
	List(context.Context, ListEstimateRequest) (ListEstimateResponse, error)
	GetByID(context.Context, GetEstimateRequest) (Estimate, error)
	Send(context.Context, SendEstimateRequest) (Estimate, error)
	SelectTier(context.Context, SelectTierRequest) (Estimate, error)
	Decline(context.Context, DeclineEstimateRequest) (Estimate, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidTier         = errors.New("invalid_tier")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrNotFound            = errors.New("not_found")
)
