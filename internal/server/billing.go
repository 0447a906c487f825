package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createCheckoutRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		AbortWithError(c, newValidationError("id", "invalid_id", "id is required"))
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case "invoice":
		result, err := s.billingSvc.CreateInvoiceCheckout(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	case "agreement":
		result, err := s.billingSvc.CreateAgreementCheckout(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	default:
		AbortWithError(c, newValidationError("type", "invalid_type", "type must be invoice or agreement"))
	}
}

type cancelBillingRequest struct {
	AgreementID string `json:"agreement_id"`
}

func (s *Server) CancelBilling(c *gin.Context) {
	var req cancelBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	agreement, err := s.billingSvc.CancelAgreement(c.Request.Context(), strings.TrimSpace(req.AgreementID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agreement})
}
