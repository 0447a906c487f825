package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/inventory/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO inventory_items (id, organization_id, name, sku, category, current_stock, reorder_point, unit_cost, avg_monthly_usage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OrgID,
		item.Name,
		item.SKU,
		item.Category,
		item.CurrentStock,
		item.ReorderPoint,
		item.UnitCost,
		item.AvgMonthlyUsage,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Exec(
		`UPDATE inventory_items SET name = ?, sku = ?, category = ?, current_stock = ?, reorder_point = ?, unit_cost = ?, avg_monthly_usage = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		item.Name,
		item.SKU,
		item.Category,
		item.CurrentStock,
		item.ReorderPoint,
		item.UnitCost,
		item.AvgMonthlyUsage,
		item.UpdatedAt,
		item.OrgID,
		item.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, name, sku, category, current_stock, reorder_point, unit_cost, avg_monthly_usage, created_at, updated_at
		 FROM inventory_items WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListItemFilter, page pagination.Pagination) ([]*domain.Item, error) {
	var items []*domain.Item
	stmt := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("organization_id = ?", orgID)
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		stmt = stmt.Where("current_stock <= reorder_point")
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("organization_id = ?", orgID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AdjustStock(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, delta int64) (*domain.Item, error) {
	var item *domain.Item
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := r.FindByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		if found.CurrentStock+delta < 0 {
			return domain.ErrInvalidStock
		}

		if err := tx.Exec(
			`UPDATE inventory_items SET current_stock = current_stock + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE organization_id = ? AND id = ?`,
			delta, orgID, id,
		).Error; err != nil {
			return err
		}

		found.CurrentStock += delta
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
