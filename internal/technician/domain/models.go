package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Technician struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	Name       string          `gorm:"not null" json:"name"`
	Email      string          `gorm:"column:email" json:"email,omitempty"`
	Phone      string          `gorm:"column:phone" json:"phone,omitempty"`
	Skills     string          `gorm:"column:skills" json:"skills,omitempty"`
	HourlyCost decimal.Decimal `gorm:"column:hourly_cost;type:numeric(18,2)" json:"hourly_cost"`
	IsActive   bool            `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}

func (Technician) TableName() string { return "technicians" }
