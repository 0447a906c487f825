package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Estimate statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Pricing tiers.
const (
	TierGood   = "good"
	TierBetter = "better"
	TierBest   = "best"
)

type Estimate struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	CustomerID   snowflake.ID    `gorm:"column:customer_id;not null;index" json:"customer_id"`
	JobID        *snowflake.ID   `gorm:"column:job_id" json:"job_id,omitempty"`
	Description  string          `gorm:"column:description" json:"description,omitempty"`
	Status       string          `gorm:"not null" json:"status"`
	GoodAmount   decimal.Decimal `gorm:"column:good_amount;type:numeric(18,2)" json:"good_amount"`
	BetterAmount decimal.Decimal `gorm:"column:better_amount;type:numeric(18,2)" json:"better_amount"`
	BestAmount   decimal.Decimal `gorm:"column:best_amount;type:numeric(18,2)" json:"best_amount"`
	SelectedTier string          `gorm:"column:selected_tier" json:"selected_tier,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (Estimate) TableName() string { return "estimates" }

// ValidTier reports whether the tier is one of good, better or best.
func ValidTier(tier string) bool {
	switch tier {
	case TierGood, TierBetter, TierBest:
		return true
	default:
		return false
	}
}
