package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	Name          string          `gorm:"not null" json:"name"`
	Email         string          `gorm:"not null" json:"email"`
	Phone         string          `gorm:"column:phone" json:"phone,omitempty"`
	Address       string          `gorm:"column:address" json:"address,omitempty"`
	TotalSpend    decimal.Decimal `gorm:"column:total_spend;type:numeric(18,2)" json:"total_spend"`
	JobCount      int64           `gorm:"column:job_count" json:"job_count"`
	LastServiceAt *time.Time      `gorm:"column:last_service_at" json:"last_service_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
