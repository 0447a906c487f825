package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/job/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, job *domain.Job) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO jobs (id, organization_id, customer_id, technician_id, title, description, trade, status,
			scheduled_start, scheduled_end, completed_at, total_amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.OrgID,
		job.CustomerID,
		job.TechnicianID,
		job.Title,
		job.Description,
		job.Trade,
		job.Status,
		job.ScheduledStart,
		job.ScheduledEnd,
		job.CompletedAt,
		job.TotalAmount,
		job.CreatedAt,
		job.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, job *domain.Job) error {
	return db.WithContext(ctx).Exec(
		`UPDATE jobs SET technician_id = ?, title = ?, description = ?, status = ?,
			scheduled_start = ?, scheduled_end = ?, completed_at = ?, total_amount = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		job.TechnicianID,
		job.Title,
		job.Description,
		job.Status,
		job.ScheduledStart,
		job.ScheduledEnd,
		job.CompletedAt,
		job.TotalAmount,
		job.UpdatedAt,
		job.OrgID,
		job.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Job, error) {
	var job domain.Job
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, technician_id, title, description, trade, status,
			scheduled_start, scheduled_end, completed_at, total_amount, created_at, updated_at
		 FROM jobs WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListJobFilter, page pagination.Pagination) ([]*domain.Job, error) {
	var jobs []*domain.Job
	stmt := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("organization_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Trade != "" {
		stmt = stmt.Where("trade = ?", filter.Trade)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.TechnicianID != "" {
		stmt = stmt.Where("technician_id = ?", filter.TechnicianID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, orgID, customerID snowflake.ID) ([]domain.Job, error) {
	var jobs []domain.Job
	err := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("organization_id = ? AND customer_id = ?", orgID, customerID).
		Order("created_at asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) ListScheduledBetween(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]domain.Job, error) {
	var jobs []domain.Job
	err := db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("organization_id = ? AND scheduled_start >= ? AND scheduled_start < ?", orgID, from, to).
		Where("status NOT IN ?", []string{domain.StatusCancelled}).
		Order("scheduled_start asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := db.WithContext(ctx).Raw(
		`SELECT status, COUNT(*) AS total FROM jobs WHERE organization_id = ? GROUP BY status`,
		orgID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}
