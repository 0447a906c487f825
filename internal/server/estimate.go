package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	estimatedomain "github.com/fieldline/fieldline/internal/estimate/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createEstimateRequest struct {
	CustomerID   string          `json:"customer_id"`
	JobID        string          `json:"job_id"`
	Description  string          `json:"description"`
	GoodAmount   decimal.Decimal `json:"good_amount"`
	BetterAmount decimal.Decimal `json:"better_amount"`
	BestAmount   decimal.Decimal `json:"best_amount"`
}

func (s *Server) CreateEstimate(c *gin.Context) {
	var req createEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.estimateSvc.Create(c.Request.Context(), estimatedomain.CreateEstimateRequest{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		JobID:        strings.TrimSpace(req.JobID),
		Description:  strings.TrimSpace(req.Description),
		GoodAmount:   req.GoodAmount,
		BetterAmount: req.BetterAmount,
		BestAmount:   req.BestAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEstimates(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.estimateSvc.List(c.Request.Context(), estimatedomain.ListEstimateRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEstimateByID(c *gin.Context) {
	resp, err := s.estimateSvc.GetByID(c.Request.Context(), estimatedomain.GetEstimateRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendEstimate(c *gin.Context) {
	resp, err := s.estimateSvc.Send(c.Request.Context(), estimatedomain.SendEstimateRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type selectEstimateTierRequest struct {
	Tier string `json:"tier"`
}

func (s *Server) SelectEstimateTier(c *gin.Context) {
	var req selectEstimateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.estimateSvc.SelectTier(c.Request.Context(), estimatedomain.SelectTierRequest{
		ID:   strings.TrimSpace(c.Param("id")),
		Tier: strings.ToLower(strings.TrimSpace(req.Tier)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeclineEstimate(c *gin.Context) {
	resp, err := s.estimateSvc.Decline(c.Request.Context(), estimatedomain.DeclineEstimateRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isEstimateValidationError(err error) bool {
	switch err {
	case estimatedomain.ErrInvalidOrganization,
		estimatedomain.ErrInvalidAmount,
		estimatedomain.ErrInvalidTier,
		estimatedomain.ErrInvalidID,
		estimatedomain.ErrCustomerNotFound:
		return true
	default:
		return false
	}
}
