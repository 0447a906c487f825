package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createTechnicianRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Skills     string          `json:"skills"`
	HourlyCost decimal.Decimal `json:"hourly_cost"`
}

func (s *Server) CreateTechnician(c *gin.Context) {
	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.Create(c.Request.Context(), techniciandomain.CreateTechnicianRequest{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Skills:     strings.TrimSpace(req.Skills),
		HourlyCost: req.HourlyCost,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTechnicians(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name       string `form:"name"`
		ActiveOnly string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly, err := parseOptionalBool(query.ActiveOnly)
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	resp, err := s.technicianSvc.List(c.Request.Context(), techniciandomain.ListTechnicianRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Name:       strings.TrimSpace(query.Name),
		ActiveOnly: activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTechnicianByID(c *gin.Context) {
	resp, err := s.technicianSvc.GetByID(c.Request.Context(), techniciandomain.GetTechnicianRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setTechnicianActiveRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) SetTechnicianActive(c *gin.Context) {
	var req setTechnicianActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.technicianSvc.SetActive(c.Request.Context(), techniciandomain.SetActiveRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Active: *req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isTechnicianValidationError(err error) bool {
	switch err {
	case techniciandomain.ErrInvalidOrganization,
		techniciandomain.ErrInvalidName,
		techniciandomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
