package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/clock"
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
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
		log:          p.Log.Named("agreement.service"),
		genID:        p.GenID,
		clk:          p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAgreementRequest) (domain.Agreement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agreement{}, domain.ErrInvalidOrganization
	}

	planName := strings.TrimSpace(req.PlanName)
	if planName == "" {
		return domain.Agreement{}, domain.ErrInvalidPlan
	}
	if req.MonthlyAmount.IsNegative() {
		return domain.Agreement{}, domain.ErrInvalidAmount
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Agreement{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Agreement{}, err
	}
	if customer == nil {
		return domain.Agreement{}, domain.ErrCustomerNotFound
	}

	now := s.clk.Now().UTC()
	agreement := domain.Agreement{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		CustomerID:    customerID,
		PlanName:      planName,
		MonthlyAmount: req.MonthlyAmount,
		PaymentStatus: domain.StatusTrial,
		StartedAt:     &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &agreement); err != nil {
		return domain.Agreement{}, err
	}

	return agreement, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAgreementRequest) (domain.ListAgreementResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListAgreementResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListAgreementFilter{
		PaymentStatus: strings.TrimSpace(req.PaymentStatus),
		CustomerID:    strings.TrimSpace(req.CustomerID),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListAgreementResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(agreement *domain.Agreement) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        agreement.ID.String(),
			CreatedAt: agreement.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	agreements := make([]domain.Agreement, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		agreements = append(agreements, *item)
	}

	resp := domain.ListAgreementResponse{Agreements: agreements}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Agreement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListAll(ctx, s.db, orgID)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAgreementRequest) (domain.Agreement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agreement{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Agreement{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Agreement{}, err
	}
	if item == nil {
		return domain.Agreement{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelAgreementRequest) (domain.Agreement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agreement{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Agreement{}, err
	}

	agreement, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Agreement{}, err
	}
	if agreement == nil {
		return domain.Agreement{}, domain.ErrNotFound
	}
	if agreement.PaymentStatus == domain.StatusCancelled {
		return domain.Agreement{}, domain.ErrAlreadyCancelled
	}

	now := s.clk.Now().UTC()
	agreement.PaymentStatus = domain.StatusCancelled
	agreement.CancelledAt = &now
	agreement.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, agreement); err != nil {
		return domain.Agreement{}, err
	}

	return *agreement, nil
}

func (s *Service) LinkProviderSubscription(ctx context.Context, id, providerSubID string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	agreementID, err := parseID(id)
	if err != nil {
		return err
	}

	agreement, err := s.repo.FindByID(ctx, s.db, orgID, agreementID)
	if err != nil {
		return err
	}
	if agreement == nil {
		return domain.ErrNotFound
	}

	agreement.ProviderSubscriptionID = strings.TrimSpace(providerSubID)
	agreement.UpdatedAt = s.clk.Now().UTC()
	return s.repo.Update(ctx, s.db, agreement)
}

// UpdateStatusByProviderSubscription is invoked from webhook processing
// and therefore carries no org context. Tenancy is derived from the
// agreement row itself.
func (s *Service) UpdateStatusByProviderSubscription(ctx context.Context, providerSubID, status string) (*domain.Agreement, error) {
	if !domain.ValidPaymentStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	agreement, err := s.repo.FindByProviderSubscription(ctx, s.db, strings.TrimSpace(providerSubID))
	if err != nil {
		return nil, err
	}
	if agreement == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clk.Now().UTC()
	agreement.PaymentStatus = status
	if status == domain.StatusCancelled {
		agreement.CancelledAt = &now
	}
	agreement.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, agreement); err != nil {
		return nil, err
	}

	return agreement, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
