package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	inventorydomain "github.com/fieldline/fieldline/internal/inventory/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createItemRequest struct {
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Category        string          `json:"category"`
	CurrentStock    int64           `json:"current_stock"`
	ReorderPoint    int64           `json:"reorder_point"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	AvgMonthlyUsage decimal.Decimal `json:"avg_monthly_usage"`
}

func (s *Server) CreateInventoryItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.Create(c.Request.Context(), inventorydomain.CreateItemRequest{
		Name:            strings.TrimSpace(req.Name),
		SKU:             strings.TrimSpace(req.SKU),
		Category:        strings.TrimSpace(req.Category),
		CurrentStock:    req.CurrentStock,
		ReorderPoint:    req.ReorderPoint,
		UnitCost:        req.UnitCost,
		AvgMonthlyUsage: req.AvgMonthlyUsage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInventoryItems(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Category string `form:"category"`
		LowStock string `form:"low_stock"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lowStock, err := parseOptionalBool(query.LowStock)
	if err != nil {
		AbortWithError(c, newValidationError("low_stock", "invalid_low_stock", "invalid low_stock"))
		return
	}

	resp, err := s.inventorySvc.List(c.Request.Context(), inventorydomain.ListItemRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Category:  strings.TrimSpace(query.Category),
		LowStock:  lowStock != nil && *lowStock,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInventoryItemByID(c *gin.Context) {
	resp, err := s.inventorySvc.GetByID(c.Request.Context(), inventorydomain.GetItemRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustStockRequest struct {
	Delta *int64 `json:"delta"`
}

func (s *Server) AdjustInventoryStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.AdjustStock(c.Request.Context(), inventorydomain.AdjustStockRequest{
		ID:    strings.TrimSpace(c.Param("id")),
		Delta: *req.Delta,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isInventoryValidationError(err error) bool {
	switch err {
	case inventorydomain.ErrInvalidOrganization,
		inventorydomain.ErrInvalidName,
		inventorydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
