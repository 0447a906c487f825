package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createAgreementRequest struct {
	CustomerID    string          `json:"customer_id"`
	PlanName      string          `json:"plan_name"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
}

func (s *Server) CreateAgreement(c *gin.Context) {
	var req createAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agreementSvc.Create(c.Request.Context(), agreementdomain.CreateAgreementRequest{
		CustomerID:    strings.TrimSpace(req.CustomerID),
		PlanName:      strings.TrimSpace(req.PlanName),
		MonthlyAmount: req.MonthlyAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAgreements(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PaymentStatus string `form:"payment_status"`
		CustomerID    string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agreementSvc.List(c.Request.Context(), agreementdomain.ListAgreementRequest{
		PageToken:     query.PageToken,
		PageSize:      int32(query.PageSize),
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
		CustomerID:    strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgreementByID(c *gin.Context) {
	resp, err := s.agreementSvc.GetByID(c.Request.Context(), agreementdomain.GetAgreementRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelAgreement(c *gin.Context) {
	resp, err := s.agreementSvc.Cancel(c.Request.Context(), agreementdomain.CancelAgreementRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isAgreementValidationError(err error) bool {
	switch err {
	case agreementdomain.ErrInvalidOrganization,
		agreementdomain.ErrInvalidPlan,
		agreementdomain.ErrInvalidAmount,
		agreementdomain.ErrInvalidID,
		agreementdomain.ErrCustomerNotFound:
		return true
	default:
		return false
	}
}
