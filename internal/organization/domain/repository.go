package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)

	AddMember(ctx context.Context, member *Member) error
	FindMember(ctx context.Context, orgID, userID snowflake.ID) (*Member, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Member, error)
}
