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
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	"github.com/fieldline/fieldline/internal/estimate/domain"
	"github.com/fieldline/fieldline/internal/orgcontext"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clk          clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("estimate.service"),
		genID:        p.GenID,
		clk:          p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEstimateRequest) (domain.Estimate, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Estimate{}, domain.ErrInvalidOrganization
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Estimate{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Estimate{}, err
	}
	if customer == nil {
		return domain.Estimate{}, domain.ErrCustomerNotFound
	}

	if req.GoodAmount.IsNegative() || req.BetterAmount.IsNegative() || req.BestAmount.IsNegative() {
		return domain.Estimate{}, domain.ErrInvalidAmount
	}

	var jobID *snowflake.ID
	if strings.TrimSpace(req.JobID) != "" {
		id, err := parseID(req.JobID)
		if err != nil {
			return domain.Estimate{}, err
		}
		jobID = &id
	}

	now := s.clk.Now().UTC()
	estimate := domain.Estimate{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		CustomerID:   customerID,
		JobID:        jobID,
		Description:  strings.TrimSpace(req.Description),
		Status:       domain.StatusDraft,
		GoodAmount:   req.GoodAmount,
		BetterAmount: req.BetterAmount,
		BestAmount:   req.BestAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &estimate); err != nil {
		return domain.Estimate{}, err
	}

	return estimate, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEstimateRequest) (domain.ListEstimateResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListEstimateResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListEstimateFilter{
		Status:     strings.TrimSpace(req.Status),
		CustomerID: strings.TrimSpace(req.CustomerID),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListEstimateResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(estimate *domain.Estimate) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        estimate.ID.String(),
			CreatedAt: estimate.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	estimates := make([]domain.Estimate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		estimates = append(estimates, *item)
	}

	resp := domain.ListEstimateResponse{Estimates: estimates}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEstimateRequest) (domain.Estimate, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Estimate{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Estimate{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Estimate{}, err
	}
	if item == nil {
		return domain.Estimate{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Send(ctx context.Context, req domain.SendEstimateRequest) (domain.Estimate, error) {
	return s.transition(ctx, req.ID, func(estimate *domain.Estimate) error {
		if estimate.Status != domain.StatusDraft {
			return domain.ErrInvalidStatus
		}
		estimate.Status = domain.StatusSent
		return nil
	})
}

func (s *Service) SelectTier(ctx context.Context, req domain.SelectTierRequest) (domain.Estimate, error) {
	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	if !domain.ValidTier(tier) {
		return domain.Estimate{}, domain.ErrInvalidTier
	}

	return s.transition(ctx, req.ID, func(estimate *domain.Estimate) error {
		if estimate.Status != domain.StatusSent {
			return domain.ErrInvalidStatus
		}
		estimate.Status = domain.StatusAccepted
		estimate.SelectedTier = tier
		return nil
	})
}

func (s *Service) Decline(ctx context.Context, req domain.DeclineEstimateRequest) (domain.Estimate, error) {
	return s.transition(ctx, req.ID, func(estimate *domain.Estimate) error {
		if estimate.Status != domain.StatusSent {
			return domain.ErrInvalidStatus
		}
		estimate.Status = domain.StatusDeclined
		return nil
	})
}

func (s *Service) transition(ctx context.Context, rawID string, mutate func(*domain.Estimate) error) (domain.Estimate, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Estimate{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Estimate{}, err
	}

	estimate, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Estimate{}, err
	}
	if estimate == nil {
		return domain.Estimate{}, domain.ErrNotFound
	}

	if err := mutate(estimate); err != nil {
		return domain.Estimate{}, err
	}
	estimate.UpdatedAt = s.clk.Now().UTC()

	if err := s.repo.Update(ctx, s.db, estimate); err != nil {
		return domain.Estimate{}, err
	}

	return *estimate, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
