package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/technician/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, technician *domain.Technician) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO technicians (id, organization_id, name, email, phone, skills, hourly_cost, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		technician.ID,
		technician.OrgID,
		technician.Name,
		technician.Email,
		technician.Phone,
		technician.Skills,
		technician.HourlyCost,
		technician.IsActive,
		technician.CreatedAt,
		technician.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, technician *domain.Technician) error {
	return db.WithContext(ctx).Exec(
		`UPDATE technicians SET name = ?, email = ?, phone = ?, skills = ?, hourly_cost = ?, is_active = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		technician.Name,
		technician.Email,
		technician.Phone,
		technician.Skills,
		technician.HourlyCost,
		technician.IsActive,
		technician.UpdatedAt,
		technician.OrgID,
		technician.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Technician, error) {
	var technician domain.Technician
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, name, email, phone, skills, hourly_cost, is_active, created_at, updated_at
		 FROM technicians WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&technician).Error
	if err != nil {
		return nil, err
	}
	if technician.ID == 0 {
		return nil, nil
	}
	return &technician, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListTechnicianFilter, page pagination.Pagination) ([]*domain.Technician, error) {
	var technicians []*domain.Technician
	stmt := db.WithContext(ctx).
		Model(&domain.Technician{}).
		Where("organization_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&technicians).Error
	if err != nil {
		return nil, err
	}
	return technicians, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Technician, error) {
	var technicians []domain.Technician
	err := db.WithContext(ctx).
		Model(&domain.Technician{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("created_at asc").
		Find(&technicians).Error
	if err != nil {
		return nil, err
	}
	return technicians, nil
}
