package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/clock"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	InvoiceRepo   invoicedomain.Repository
	AgreementRepo agreementdomain.Repository
	Config        Config `optional:"true"`
}

// Scheduler runs the periodic sweeps that move records into states no
// request handler triggers: invoices past their due date become
// OVERDUE, and agreements stuck in past_due get cancelled.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	invoiceRepo   invoicedomain.Repository
	agreementRepo agreementdomain.Repository
}

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.InvoiceRepo == nil || p.AgreementRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler"),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		invoiceRepo:   p.InvoiceRepo,
		agreementRepo: p.AgreementRepo,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("job timed out", zap.String("job", name), zap.Duration("elapsed", elapsed), zap.Error(err))
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "mark_overdue", s.MarkOverdueJob))
	err = errors.Join(err, s.runJob(parent, "lapse_past_due", s.LapsePastDueJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// MarkOverdueJob flips SENT and PARTIAL invoices whose due date plus
// grace has passed to OVERDUE.
func (s *Scheduler) MarkOverdueJob(ctx context.Context) error {
	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.OverdueGrace)

	updated, err := s.invoiceRepo.MarkOverdueBefore(ctx, s.db, cutoff, now)
	if err != nil {
		return err
	}
	if updated > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", updated))
	}
	return nil
}

// LapsePastDueJob cancels agreements that have sat in past_due longer
// than the lapse window.
func (s *Scheduler) LapsePastDueJob(ctx context.Context) error {
	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.PastDueLapse)

	updated, err := s.agreementRepo.LapsePastDueBefore(ctx, s.db, cutoff, now)
	if err != nil {
		return err
	}
	if updated > 0 {
		s.log.Info("agreements lapsed", zap.Int64("count", updated))
	}
	return nil
}
