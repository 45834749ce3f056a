package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/email"
	"github.com/estatedesk/backoffice/pkg/leadlifecycle"
	"github.com/estatedesk/backoffice/pkg/leadscoring"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Scheduler runs the recurring background jobs: the nightly stale-lead
// sweep and the score recompute.
type Scheduler struct {
	cron          *cron.Cron
	db            *database.Client
	lifecycle     *leadlifecycle.Service
	scoring       *leadscoring.Service
	email         *email.Service
	staleLeadDays int
	log           logger.Logger
}

// NewScheduler creates the job scheduler. Jobs are registered but not
// started until Start is called.
func NewScheduler(db *database.Client, lifecycle *leadlifecycle.Service, scoring *leadscoring.Service, emailSvc *email.Service, staleLeadDays int, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		lifecycle:     lifecycle,
		scoring:       scoring,
		email:         emailSvc,
		staleLeadDays: staleLeadDays,
		log:           log,
	}
}

// Start registers and starts the cron jobs.
func (s *Scheduler) Start() error {
	// Nightly at 02:00: recompute lead scores.
	if _, err := s.cron.AddFunc("0 2 * * *", s.recomputeScores); err != nil {
		return err
	}
	// Nightly at 07:00: report stale leads to admins.
	if _, err := s.cron.AddFunc("0 7 * * *", s.sweepStaleLeads); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("job scheduler started", "stale_lead_days", s.staleLeadDays)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) recomputeScores() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	updated, err := s.scoring.RecalculateAll(ctx)
	if err != nil {
		s.log.Error("score recompute failed", "error", err)
		return
	}
	s.log.Info("score recompute finished", "updated", updated)
}

func (s *Scheduler) sweepStaleLeads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	maxAge := time.Duration(s.staleLeadDays) * 24 * time.Hour
	stale, err := s.lifecycle.FindStale(ctx, maxAge)
	if err != nil {
		s.log.Error("stale lead sweep failed", "error", err)
		return
	}
	if len(stale) == 0 {
		s.log.Info("stale lead sweep finished", "stale", 0)
		return
	}

	var admins []models.User
	if err := s.db.DB.WithContext(ctx).
		Where("role = ? AND active = ?", models.RoleAdmin, true).
		Find(&admins).Error; err != nil {
		s.log.Error("stale lead sweep failed loading admins", "error", err)
		return
	}

	if s.email != nil {
		for _, admin := range admins {
			if err := s.email.NotifyStaleLeads(ctx, admin, stale); err != nil {
				s.log.Warn("failed sending stale lead report", "admin_id", admin.ID, "error", err)
			}
		}
	}

	s.log.Info("stale lead sweep finished", "stale", len(stale), "admins_notified", len(admins))
}
