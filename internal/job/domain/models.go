package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Job statuses.
const (
	StatusScheduled  = "scheduled"
	StatusEnRoute    = "en_route"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Trades served by the platform.
const (
	TradeHVAC       = "hvac"
	TradePlumbing   = "plumbing"
	TradeElectrical = "electrical"
	TradeGeneral    = "general"
)

type Job struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	CustomerID     snowflake.ID    `gorm:"column:customer_id;not null;index" json:"customer_id"`
	TechnicianID   *snowflake.ID   `gorm:"column:technician_id" json:"technician_id,omitempty"`
	Title          string          `gorm:"not null" json:"title"`
	Description    string          `gorm:"column:description" json:"description,omitempty"`
	Trade          string          `gorm:"not null" json:"trade"`
	Status         string          `gorm:"not null" json:"status"`
	ScheduledStart *time.Time      `gorm:"column:scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time      `gorm:"column:scheduled_end" json:"scheduled_end,omitempty"`
	CompletedAt    *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(18,2)" json:"total_amount"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }

// ValidTransition reports whether a job may move between two statuses.
// Completed and cancelled jobs are terminal.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusScheduled:
		return to == StatusEnRoute || to == StatusInProgress || to == StatusCancelled
	case StatusEnRoute:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// ValidTrade reports whether the trade is one the platform serves.
func ValidTrade(trade string) bool {
	switch trade {
	case TradeHVAC, TradePlumbing, TradeElectrical, TradeGeneral:
		return true
	default:
		return false
	}
}
