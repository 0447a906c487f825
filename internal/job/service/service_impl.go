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
	"github.com/fieldline/fieldline/internal/job/domain"
	"github.com/fieldline/fieldline/internal/orgcontext"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
	"github.com/fieldline/fieldline/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	CustomerRepo   customerdomain.Repository
	TechnicianRepo techniciandomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clk            clock.Clock
	repo           domain.Repository
	customerRepo   customerdomain.Repository
	technicianRepo techniciandomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("job.service"),
		genID:          p.GenID,
		clk:            p.Clock,
		repo:           p.Repo,
		customerRepo:   p.CustomerRepo,
		technicianRepo: p.TechnicianRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateJobRequest) (domain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Job{}, domain.ErrInvalidOrganization
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Job{}, domain.ErrInvalidTitle
	}

	trade := strings.ToLower(strings.TrimSpace(req.Trade))
	if !domain.ValidTrade(trade) {
		return domain.Job{}, domain.ErrInvalidTrade
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Job{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Job{}, err
	}
	if customer == nil {
		return domain.Job{}, domain.ErrCustomerNotFound
	}

	now := s.clk.Now().UTC()
	job := domain.Job{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		CustomerID:     customerID,
		Title:          title,
		Description:    strings.TrimSpace(req.Description),
		Trade:          trade,
		Status:         domain.StatusScheduled,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		TotalAmount:    req.TotalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &job); err != nil {
		return domain.Job{}, err
	}

	return job, nil
}

func (s *Service) List(ctx context.Context, req domain.ListJobRequest) (domain.ListJobResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListJobResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListJobFilter{
		Status:       strings.TrimSpace(req.Status),
		Trade:        strings.TrimSpace(req.Trade),
		CustomerID:   strings.TrimSpace(req.CustomerID),
		TechnicianID: strings.TrimSpace(req.TechnicianID),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListJobResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(job *domain.Job) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        job.ID.String(),
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	jobs := make([]domain.Job, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		jobs = append(jobs, *item)
	}

	resp := domain.ListJobResponse{Jobs: jobs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetJobRequest) (domain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Job{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Job{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Job{}, err
	}
	if item == nil {
		return domain.Job{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Assign(ctx context.Context, req domain.AssignJobRequest) (domain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Job{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Job{}, err
	}
	technicianID, err := parseID(req.TechnicianID)
	if err != nil {
		return domain.Job{}, err
	}

	job, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Job{}, err
	}
	if job == nil {
		return domain.Job{}, domain.ErrNotFound
	}
	if job.Status == domain.StatusCompleted || job.Status == domain.StatusCancelled {
		return domain.Job{}, domain.ErrInvalidTransition
	}

	technician, err := s.technicianRepo.FindByID(ctx, s.db, orgID, technicianID)
	if err != nil {
		return domain.Job{}, err
	}
	if technician == nil {
		return domain.Job{}, domain.ErrTechnicianNotFound
	}

	job.TechnicianID = &technician.ID
	job.UpdatedAt = s.clk.Now().UTC()
	if err := s.repo.Update(ctx, s.db, job); err != nil {
		return domain.Job{}, err
	}

	return *job, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateJobStatusRequest) (domain.Job, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Job{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Job{}, err
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case domain.StatusScheduled, domain.StatusEnRoute, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled:
	default:
		return domain.Job{}, domain.ErrInvalidStatus
	}

	job, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Job{}, err
	}
	if job == nil {
		return domain.Job{}, domain.ErrNotFound
	}
	if !domain.ValidTransition(job.Status, status) {
		return domain.Job{}, domain.ErrInvalidTransition
	}

	now := s.clk.Now().UTC()
	job.Status = status
	job.UpdatedAt = now

	if status == domain.StatusCompleted {
		job.CompletedAt = &now
		// Completion also rolls the job total into the customer's
		// lifetime spend in the same transaction.
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Update(ctx, tx, job); err != nil {
				return err
			}
			return s.customerRepo.RecordService(ctx, tx, orgID, job.CustomerID, job.TotalAmount, now)
		})
		if err != nil {
			return domain.Job{}, err
		}
		return *job, nil
	}

	if err := s.repo.Update(ctx, s.db, job); err != nil {
		return domain.Job{}, err
	}

	return *job, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
