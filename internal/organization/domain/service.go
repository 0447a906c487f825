package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*Organization, error)
	Get(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
	AddMember(ctx context.Context, orgID, userID snowflake.ID, role string) (*Member, error)
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error)
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}
