package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/pkg/db/option"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, agreement *domain.Agreement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO agreements (id, organization_id, customer_id, plan_name, monthly_amount, payment_status, provider_subscription_id, started_at, cancelled_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agreement.ID,
		agreement.OrgID,
		agreement.CustomerID,
		agreement.PlanName,
		agreement.MonthlyAmount,
		agreement.PaymentStatus,
		agreement.ProviderSubscriptionID,
		agreement.StartedAt,
		agreement.CancelledAt,
		agreement.CreatedAt,
		agreement.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, agreement *domain.Agreement) error {
	return db.WithContext(ctx).Exec(
		`UPDATE agreements SET plan_name = ?, monthly_amount = ?, payment_status = ?, provider_subscription_id = ?, started_at = ?, cancelled_at = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		agreement.PlanName,
		agreement.MonthlyAmount,
		agreement.PaymentStatus,
		agreement.ProviderSubscriptionID,
		agreement.StartedAt,
		agreement.CancelledAt,
		agreement.UpdatedAt,
		agreement.OrgID,
		agreement.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Agreement, error) {
	var agreement domain.Agreement
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, plan_name, monthly_amount, payment_status, provider_subscription_id, started_at, cancelled_at, created_at, updated_at
		 FROM agreements WHERE organization_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&agreement).Error
	if err != nil {
		return nil, err
	}
	if agreement.ID == 0 {
		return nil, nil
	}
	return &agreement, nil
}

func (r *repo) FindByProviderSubscription(ctx context.Context, db *gorm.DB, providerSubID string) (*domain.Agreement, error) {
	var agreement domain.Agreement
	err := db.WithContext(ctx).Raw(
		`SELECT id, organization_id, customer_id, plan_name, monthly_amount, payment_status, provider_subscription_id, started_at, cancelled_at, created_at, updated_at
		 FROM agreements WHERE provider_subscription_id = ?`,
		providerSubID,
	).Scan(&agreement).Error
	if err != nil {
		return nil, err
	}
	if agreement.ID == 0 {
		return nil, nil
	}
	return &agreement, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListAgreementFilter, page pagination.Pagination) ([]*domain.Agreement, error) {
	var agreements []*domain.Agreement
	stmt := db.WithContext(ctx).
		Model(&domain.Agreement{}).
		Where("organization_id = ?", orgID)
	if filter.PaymentStatus != "" {
		stmt = stmt.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&agreements).Error
	if err != nil {
		return nil, err
	}
	return agreements, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Agreement, error) {
	var agreements []domain.Agreement
	err := db.WithContext(ctx).
		Model(&domain.Agreement{}).
		Where("organization_id = ?", orgID).
		Order("created_at asc").
		Find(&agreements).Error
	if err != nil {
		return nil, err
	}
	return agreements, nil
}

func (r *repo) LapsePastDueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time, now time.Time) (int64, error) {
	tx := db.WithContext(ctx).Exec(
		`UPDATE agreements SET payment_status = ?, cancelled_at = ?, updated_at = ?
		 WHERE payment_status = ? AND updated_at < ?`,
		domain.StatusCancelled,
		now,
		now,
		domain.StatusPastDue,
		cutoff,
	)
	return tx.RowsAffected, tx.Error
}
