package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	InvoiceStatusVoid    InvoiceStatus = "VOID"
)

type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	CustomerID    snowflake.ID    `gorm:"column:customer_id;not null;index" json:"customer_id"`
	JobID         *snowflake.ID   `gorm:"column:job_id" json:"job_id,omitempty"`
	InvoiceNumber string          `gorm:"column:invoice_number" json:"invoice_number,omitempty"`
	Status        InvoiceStatus   `gorm:"not null" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(18,2)" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"column:paid_amount;type:numeric(18,2)" json:"paid_amount"`
	BalanceDue    decimal.Decimal `gorm:"column:balance_due;type:numeric(18,2)" json:"balance_due"`
	DueDate       *time.Time      `gorm:"column:due_date" json:"due_date,omitempty"`
	IssuedAt      *time.Time      `gorm:"column:issued_at" json:"issued_at,omitempty"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Open reports whether the invoice can still collect payments.
func (i Invoice) Open() bool {
	switch i.Status {
	case InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}
