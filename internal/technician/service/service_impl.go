package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/clock"
	"github.com/fieldline/fieldline/internal/orgcontext"
	"github.com/fieldline/fieldline/internal/technician/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clk   clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("technician.service"),
		genID: p.GenID,
		clk:   p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTechnicianRequest) (domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Technician{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Technician{}, domain.ErrInvalidName
	}

	now := s.clk.Now().UTC()
	technician := domain.Technician{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		Name:       name,
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Skills:     strings.TrimSpace(req.Skills),
		HourlyCost: req.HourlyCost,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &technician); err != nil {
		return domain.Technician{}, err
	}

	return technician, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTechnicianRequest) (domain.ListTechnicianResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListTechnicianResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListTechnicianFilter{
		Name:       strings.TrimSpace(req.Name),
		ActiveOnly: req.ActiveOnly,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTechnicianResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(technician *domain.Technician) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        technician.ID.String(),
			CreatedAt: technician.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	technicians := make([]domain.Technician, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		technicians = append(technicians, *item)
	}

	resp := domain.ListTechnicianResponse{Technicians: technicians}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListActive(ctx, s.db, orgID)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTechnicianRequest) (domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Technician{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Technician{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Technician{}, err
	}
	if item == nil {
		return domain.Technician{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) SetActive(ctx context.Context, req domain.SetActiveRequest) (domain.Technician, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Technician{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Technician{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Technician{}, err
	}
	if item == nil {
		return domain.Technician{}, domain.ErrNotFound
	}

	item.IsActive = req.Active
	item.UpdatedAt = s.clk.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Technician{}, err
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
