package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/invoice/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, organization_id, customer_id, job_id, invoice_number, status, total_amount, paid_amount, balance_due, due_date, issued_at, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.OrgID,
		invoice.CustomerID,
		invoice.JobID,
		invoice.InvoiceNumber,
		invoice.Status,
		invoice.TotalAmount,
		invoice.PaidAmount,
		invoice.BalanceDue,
		invoice.DueDate,
		invoice.IssuedAt,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET invoice_number = ?, status = ?, total_amount = ?, paid_amount = ?, balance_due = ?, due_date = ?, issued_at = ?, paid_at = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		invoice.InvoiceNumber,
		invoice.Status,
		invoice.TotalAmount,
		invoice.PaidAmount,
		invoice.BalanceDue,
		invoice.DueDate,
		invoice.IssuedAt,
		invoice.PaidAt,
		invoice.UpdatedAt,
		invoice.OrgID,
		invoice.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, job_id, invoice_number, status, total_amount, paid_amount, balance_due, due_date, issued_at, paid_at, created_at, updated_at
		 FROM invoices WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

// FindByIDAnyOrg is used by webhook reconciliation where no org context
// exists. Tenancy comes from the invoice row.
func (r *repo) FindByIDAnyOrg(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, job_id, invoice_number, status, total_amount, paid_amount, balance_due, due_date, issued_at, paid_at, created_at, updated_at
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("organization_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) MarkOverdueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time, now time.Time) (int64, error) {
	tx := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ?
		 WHERE status IN (?, ?) AND due_date IS NOT NULL AND due_date < ? AND balance_due > 0`,
		domain.InvoiceStatusOverdue,
		now,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusPartial,
		cutoff,
	)
	return tx.RowsAffected, tx.Error
}
