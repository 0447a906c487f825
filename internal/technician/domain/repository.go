package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, technician *Technician) error
	Update(ctx context.Context, db *gorm.DB, technician *Technician) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Technician, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListTechnicianFilter, page pagination.Pagination) ([]*Technician, error)
	ListActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Technician, error)
}
