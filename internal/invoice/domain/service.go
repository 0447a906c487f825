package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	CustomerID string
}

type ListInvoiceFilter struct {
	Status     string
	CustomerID string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type CreateInvoiceRequest struct {
	CustomerID  string
	JobID       string
	TotalAmount decimal.Decimal
	DueDate     *time.Time
}

type GetInvoiceRequest struct {
	ID string
}

type SendInvoiceRequest struct {
	ID string
}

type VoidInvoiceRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (Invoice, error)
	Send(context.Context, SendInvoiceRequest) (Invoice, error)
	Void(context.Context, VoidInvoiceRequest) (Invoice, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrNotFound            = errors.New("not_found")
)
