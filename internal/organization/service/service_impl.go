package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"

	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/organization/domain"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
	clk   clock.Clock
}

func NewService(repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{repo: repo, genID: genID, clk: clk}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgSlug := slug.Make(name)
	if _, err := s.repo.FindBySlug(ctx, orgSlug); err == nil {
		return nil, domain.ErrSlugTaken
	} else if !errors.Is(err, domain.ErrOrgNotFound) {
		return nil, err
	}

	now := s.clk.Now().UTC()
	org := &domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      orgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	member := &domain.Member{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		UserID:    userID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	return org, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.Organization, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) AddMember(ctx context.Context, orgID, userID snowflake.ID, role string) (*domain.Member, error) {
	switch role {
	case domain.RoleOwner, domain.RoleDispatcher, domain.RoleTechnician:
	default:
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByID(ctx, orgID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindMember(ctx, orgID, userID); err == nil {
		return nil, domain.ErrMemberExists
	} else if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}

	now := s.clk.Now().UTC()
	member := &domain.Member{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return "", domain.ErrNotMember
		}
		return "", err
	}
	return member.Role, nil
}
