package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, estimate *Estimate) error
	Update(ctx context.Context, db *gorm.DB, estimate *Estimate) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Estimate, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListEstimateFilter, page pagination.Pagination) ([]*Estimate, error)
}
