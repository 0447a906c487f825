package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agreement *Agreement) error
	Update(ctx context.Context, db *gorm.DB, agreement *Agreement) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Agreement, error)
	FindByProviderSubscription(ctx context.Context, db *gorm.DB, providerSubID string) (*Agreement, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListAgreementFilter, page pagination.Pagination) ([]*Agreement, error)
	ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Agreement, error)
	LapsePastDueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time, now time.Time) (int64, error)
}
