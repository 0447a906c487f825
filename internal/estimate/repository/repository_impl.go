package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/estimate/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, estimate *domain.Estimate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO estimates (id, organization_id, customer_id, job_id, description, status, good_amount, better_amount, best_amount, selected_tier, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		estimate.ID,
		estimate.OrgID,
		estimate.CustomerID,
		estimate.JobID,
		estimate.Description,
		estimate.Status,
		estimate.GoodAmount,
		estimate.BetterAmount,
		estimate.BestAmount,
		estimate.SelectedTier,
		estimate.CreatedAt,
		estimate.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, estimate *domain.Estimate) error {
	return db.WithContext(ctx).Exec(
		`UPDATE estimates SET description = ?, status = ?, good_amount = ?, better_amount = ?, best_amount = ?, selected_tier = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		estimate.Description,
		estimate.Status,
		estimate.GoodAmount,
		estimate.BetterAmount,
		estimate.BestAmount,
		estimate.SelectedTier,
		estimate.UpdatedAt,
		estimate.OrgID,
		estimate.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Estimate, error) {
	var estimate domain.Estimate
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, job_id, description, status, good_amount, better_amount, best_amount, selected_tier, created_at, updated_at
		 FROM estimates WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&estimate).Error
	if err != nil {
		return nil, err
	}
	if estimate.ID == 0 {
		return nil, nil
	}
	return &estimate, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListEstimateFilter, page pagination.Pagination) ([]*domain.Estimate, error) {
	var estimates []*domain.Estimate
	stmt := db.WithContext(ctx).
		Model(&domain.Estimate{}).
		Where("organization_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&estimates).Error
	if err != nil {
		return nil, err
	}
	return estimates, nil
}
