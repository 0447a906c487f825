package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListAgreementRequest struct {
	PageToken     string
	PageSize      int32
	PaymentStatus string
	CustomerID    string
}

type ListAgreementFilter struct {
	PaymentStatus string
	CustomerID    string
}

type ListAgreementResponse struct {
	pagination.PageInfo
	Agreements []Agreement `json:"agreements"`
}

type CreateAgreementRequest struct {
	CustomerID    string
	PlanName      string
	MonthlyAmount decimal.Decimal
}

type GetAgreementRequest struct {
	ID string
}

type CancelAgreementRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateAgreementRequest) (Agreement, error)
	List(context.Context, ListAgreementRequest) (ListAgreementResponse, error)
	ListAll(context.Context) ([]Agreement, error)
	GetByID(context.Context, GetAgreementRequest) (Agreement, error)
	Cancel(context.Context, CancelAgreementRequest) (Agreement, error)
	LinkProviderSubscription(ctx context.Context, id, providerSubID string) error
	UpdateStatusByProviderSubscription(ctx context.Context, providerSubID, status string) (*Agreement, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPlan         = errors.New("invalid_plan")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrAlreadyCancelled    = errors.New("agreement_already_cancelled")
	ErrNotFound            = errors.New("not_found")
)
