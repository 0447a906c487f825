package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type ListItemRequest struct {
	PageToken string
	PageSize  int32
	Category  string
	LowStock  bool
}

type ListItemFilter struct {
	Category string
	LowStock bool
}

type ListItemResponse struct {
	pagination.PageInfo
	Items []Item `json:"items"`
}

type CreateItemRequest struct {
	Name            string
	SKU             string
	Category        string
	CurrentStock    int64
	ReorderPoint    int64
	UnitCost        decimal.Decimal
	AvgMonthlyUsage decimal.Decimal
}

type GetItemRequest struct {
	ID string
}

type AdjustStockRequest struct {
	ID    string
	Delta int64
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	List(context.Context, ListItemRequest) (ListItemResponse, error)
	ListAll(context.Context) ([]Item, error)
	GetByID(context.Context, GetItemRequest) (Item, error)
	AdjustStock(context.Context, AdjustStockRequest) (Item, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidStock        = errors.New("invalid_stock")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
