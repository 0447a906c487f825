package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Item struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	Name            string          `gorm:"not null" json:"name"`
	SKU             string          `gorm:"column:sku" json:"sku,omitempty"`
	Category        string          `gorm:"column:category" json:"category,omitempty"`
	CurrentStock    int64           `gorm:"column:current_stock" json:"current_stock"`
	ReorderPoint    int64           `gorm:"column:reorder_point" json:"reorder_point"`
	UnitCost        decimal.Decimal `gorm:"column:unit_cost;type:numeric(18,2)" json:"unit_cost"`
	AvgMonthlyUsage decimal.Decimal `gorm:"column:avg_monthly_usage;type:numeric(18,2)" json:"avg_monthly_usage"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "inventory_items" }
