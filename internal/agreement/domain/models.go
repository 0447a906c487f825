package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Agreement payment statuses.
const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusPastDue   = "past_due"
	StatusCancelled = "cancelled"
)

// Agreement is a recurring maintenance membership for a customer.
type Agreement struct {
	ID                     snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID                  snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	CustomerID             snowflake.ID    `gorm:"column:customer_id;not null;index" json:"customer_id"`
	PlanName               string          `gorm:"column:plan_name;not null" json:"plan_name"`
	MonthlyAmount          decimal.Decimal `gorm:"column:monthly_amount;type:numeric(18,2)" json:"monthly_amount"`
	PaymentStatus          string          `gorm:"column:payment_status;not null" json:"payment_status"`
	ProviderSubscriptionID string          `gorm:"column:provider_subscription_id" json:"provider_subscription_id,omitempty"`
	StartedAt              *time.Time      `gorm:"column:started_at" json:"started_at,omitempty"`
	CancelledAt            *time.Time      `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt              time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"not null" json:"updated_at"`
}

func (Agreement) TableName() string { return "agreements" }

// ValidPaymentStatus reports whether the status is a known agreement state.
func ValidPaymentStatus(status string) bool {
	switch status {
	case StatusTrial, StatusActive, StatusPastDue, StatusCancelled:
		return true
	default:
		return false
	}
}
