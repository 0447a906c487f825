package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, job *Job) error
	Update(ctx context.Context, db *gorm.DB, job *Job) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Job, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListJobFilter, page pagination.Pagination) ([]*Job, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, orgID, customerID snowflake.ID) ([]Job, error)
	ListScheduledBetween(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]Job, error)
	CountByStatus(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (map[string]int64, error)
}
