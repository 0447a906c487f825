package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	Update(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Item, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListItemFilter, page pagination.Pagination) ([]*Item, error)
	ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Item, error)
	AdjustStock(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, delta int64) (*Item, error)
}
