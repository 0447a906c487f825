package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListTechnicianRequest struct {
	PageToken  string
	PageSize   int32
	Name       string
	ActiveOnly bool
}

type ListTechnicianFilter struct {
	Name       string
	ActiveOnly bool
}

type ListTechnicianResponse struct {
	pagination.PageInfo
	Technicians []Technician `json:"technicians"`
}

type CreateTechnicianRequest struct {
	Name       string
	Email      string
	Phone      string
	Skills     string
	HourlyCost decimal.Decimal
}

type GetTechnicianRequest struct {
	ID string
}

type SetActiveRequest struct {
	ID     string
	Active bool
}

type Service interface {
	Create(context.Context, CreateTechnicianRequest) (Technician, error)
	List(context.Context, ListTechnicianRequest) (ListTechnicianResponse, error)
	ListActive(context.Context) ([]Technician, error)
	GetByID(context.Context, GetTechnicianRequest) (Technician, error)
	SetActive(context.Context, SetActiveRequest) (Technician, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
