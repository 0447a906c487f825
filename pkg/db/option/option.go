package option

import (
	"time"

	"gorm.io/gorm"

	"github.com/fieldline/fieldline/pkg/db/pagination"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination applies cursor pagination over (created_at, id)
// descending. One extra row beyond the page size is fetched so the
// caller can detect whether more rows remain.
func ApplyPagination(page pagination.Pagination) Option {
	return &paginationOption{page: page}
}

func (o *paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}

	if token := o.page.PageToken; token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err == nil && cursor != nil {
			if createdAt, parseErr := time.Parse(time.RFC3339, cursor.CreatedAt); parseErr == nil {
				stmt = stmt.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					createdAt, createdAt, cursor.ID,
				)
			}
		}
	}

	return stmt.Limit(size + 1)
}
