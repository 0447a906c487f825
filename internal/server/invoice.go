package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
	"github.com/fieldline/fieldline/internal/providers/email"
	"github.com/fieldline/fieldline/internal/providers/pdf"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type createInvoiceRequest struct {
	CustomerID  string          `json:"customer_id"`
	JobID       string          `json:"job_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     string          `json:"due_date"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		JobID:       strings.TrimSpace(req.JobID),
		TotalAmount: req.TotalAmount,
		DueDate:     dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
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

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), invoicedomain.SendInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Email delivery is best effort. The invoice is already issued and
	// the caller gets a success either way.
	if err := s.emailIssuedInvoice(c, resp); err != nil {
		s.log.Warn("invoice email failed",
			zap.String("invoice_id", resp.ID.String()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) emailIssuedInvoice(c *gin.Context, inv invoicedomain.Invoice) error {
	ctx := c.Request.Context()

	cust, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: inv.CustomerID.String()})
	if err != nil {
		return err
	}

	dueDate := ""
	if inv.DueDate != nil {
		dueDate = inv.DueDate.Format(dateOnlyLayout)
	}

	orgName := ""
	if orgID, ok := s.orgIDFromContext(c); ok {
		if org, err := s.organizationSvc.Get(ctx, orgID); err == nil {
			orgName = org.Name
		}
	}

	return email.SendInvoiceIssued(ctx, s.emailProvider, cust.Email, email.InvoiceIssuedData{
		CustomerName:  cust.Name,
		InvoiceNumber: inv.InvoiceNumber,
		Total:         inv.TotalAmount.StringFixed(2),
		DueDate:       dueDate,
		OrgName:       orgName,
	})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Void(c.Request.Context(), invoicedomain.VoidInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()

	inv, err := s.invoiceSvc.GetByID(ctx, invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cust, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: inv.CustomerID.String()})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	dueDate := ""
	if inv.DueDate != nil {
		dueDate = inv.DueDate.Format(dateOnlyLayout)
	}
	issueDate := inv.CreatedAt.Format(dateOnlyLayout)
	if inv.IssuedAt != nil {
		issueDate = inv.IssuedAt.Format(dateOnlyLayout)
	}

	orgName := ""
	if orgID, ok := s.orgIDFromContext(c); ok {
		if org, err := s.organizationSvc.Get(ctx, orgID); err == nil {
			orgName = org.Name
		}
	}

	description := "Service"
	if inv.JobID != nil {
		description = fmt.Sprintf("Job %s", inv.JobID.String())
	}

	doc, err := s.pdfProvider.GenerateInvoice(ctx, pdf.InvoiceData{
		OrgName:       orgName,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		BillToName:    cust.Name,
		BillToEmail:   cust.Email,
		Items: []pdf.InvoiceItem{
			{Description: description, Amount: inv.TotalAmount.StringFixed(2)},
		},
		Total:      inv.TotalAmount.StringFixed(2),
		Paid:       inv.PaidAmount.StringFixed(2),
		BalanceDue: inv.BalanceDue.StringFixed(2),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	buf, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber)))
	c.Data(http.StatusOK, "application/pdf", buf)
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidOrganization,
		invoicedomain.ErrInvalidAmount,
		invoicedomain.ErrInvalidID,
		invoicedomain.ErrCustomerNotFound:
		return true
	default:
		return false
	}
}
