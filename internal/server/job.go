package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	jobdomain "github.com/fieldline/fieldline/internal/job/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createJobRequest struct {
	CustomerID     string          `json:"customer_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Trade          string          `json:"trade"`
	ScheduledStart *time.Time      `json:"scheduled_start"`
	ScheduledEnd   *time.Time      `json:"scheduled_end"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

func (s *Server) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobSvc.Create(c.Request.Context(), jobdomain.CreateJobRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Trade:          strings.TrimSpace(req.Trade),
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		TotalAmount:    req.TotalAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListJobs(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status       string `form:"status"`
		Trade        string `form:"trade"`
		CustomerID   string `form:"customer_id"`
		TechnicianID string `form:"technician_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobSvc.List(c.Request.Context(), jobdomain.ListJobRequest{
		PageToken:    query.PageToken,
		PageSize:     int32(query.PageSize),
		Status:       strings.TrimSpace(query.Status),
		Trade:        strings.TrimSpace(query.Trade),
		CustomerID:   strings.TrimSpace(query.CustomerID),
		TechnicianID: strings.TrimSpace(query.TechnicianID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetJobByID(c *gin.Context) {
	resp, err := s.jobSvc.GetByID(c.Request.Context(), jobdomain.GetJobRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type assignJobRequest struct {
	TechnicianID string `json:"technician_id"`
}

func (s *Server) AssignJob(c *gin.Context) {
	var req assignJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobSvc.Assign(c.Request.Context(), jobdomain.AssignJobRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		TechnicianID: strings.TrimSpace(req.TechnicianID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateJobStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateJobStatus(c *gin.Context) {
	var req updateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobSvc.UpdateStatus(c.Request.Context(), jobdomain.UpdateJobStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isJobValidationError(err error) bool {
	switch err {
	case jobdomain.ErrInvalidOrganization,
		jobdomain.ErrInvalidTitle,
		jobdomain.ErrInvalidTrade,
		jobdomain.ErrInvalidStatus,
		jobdomain.ErrInvalidID,
		jobdomain.ErrCustomerNotFound,
		jobdomain.ErrTechnicianNotFound:
		return true
	default:
		return false
	}
}
