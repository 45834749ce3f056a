package leadlifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles lead pipeline operations: status changes, their history
// and pipeline-level reporting.
type Service struct {
	db    *database.Client
	cache *cache.Client
	log   logger.Logger
}

// NewService creates a new lead lifecycle service. cache may be nil.
func NewService(db *database.Client, cacheClient *cache.Client, log logger.Logger) *Service {
	return &Service{db: db, cache: cacheClient, log: log}
}

// UpdateStatusRequest is the payload for a status change.
type UpdateStatusRequest struct {
	Status string `json:"leadStatus" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}

// StatusChangeResponse reports both sides of a status change.
type StatusChangeResponse struct {
	LeadID         uint   `json:"leadId"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
}

// UpdateStatus moves a lead to a new status and records the change. The
// pipeline is permissive: any status may move to any other status, and a
// no-op change is accepted without writing history.
func (s *Service) UpdateStatus(ctx context.Context, leadID uint, actor domain.Actor, req UpdateStatusRequest) (*StatusChangeResponse, error) {
	if !models.IsValidLeadStatus(req.Status) {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown lead status %q", req.Status))
	}

	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	if err := s.authorize(&lead, actor); err != nil {
		return nil, err
	}

	previous := lead.System.LeadStatus
	if previous == req.Status {
		return &StatusChangeResponse{LeadID: lead.ID, PreviousStatus: previous, NewStatus: previous}, nil
	}

	err := s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Lead{}).Where("id = ?", lead.ID).
			Update("lead_status", req.Status).Error; err != nil {
			return err
		}
		history := models.LeadStatusHistory{
			LeadID:    lead.ID,
			UserID:    actor.UserID,
			OldStatus: previous,
			NewStatus: req.Status,
			Notes:     req.Notes,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	// Drop the cached copy so the next read sees the new status.
	leads.InvalidateCache(ctx, s.cache, s.log, lead.ID)

	s.log.Info("lead status changed",
		"lead_id", lead.ID, "from", previous, "to", req.Status, "by", actor.UserID)

	return &StatusChangeResponse{LeadID: lead.ID, PreviousStatus: previous, NewStatus: req.Status}, nil
}

// GetHistory returns the status change trail of a lead, newest first.
func (s *Service) GetHistory(ctx context.Context, leadID uint, actor domain.Actor) ([]models.LeadStatusHistory, error) {
	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	if err := s.authorize(&lead, actor); err != nil {
		return nil, err
	}

	var history []models.LeadStatusHistory
	err := s.db.DB.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC, id DESC").
		Find(&history).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if history == nil {
		history = []models.LeadStatusHistory{}
	}
	return history, nil
}

// StatusCounts returns the pipeline breakdown visible to the actor. Every
// status appears, zero counts included.
func (s *Service) StatusCounts(ctx context.Context, actor domain.Actor) (map[string]int64, error) {
	query := s.db.DB.WithContext(ctx).Model(&models.Lead{})
	if !actor.IsAdmin() {
		query = query.Where("assigned_agent_id = ?", actor.UserID)
	}

	type row struct {
		LeadStatus string
		Count      int64
	}
	var rows []row
	if err := query.Select("lead_status, COUNT(*) as count").Group("lead_status").Scan(&rows).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	counts := make(map[string]int64, len(models.LeadStatuses))
	for _, status := range models.LeadStatuses {
		counts[status] = 0
	}
	for _, r := range rows {
		counts[r.LeadStatus] = r.Count
	}
	return counts, nil
}

// FindStale returns leads that have sat in the New status longer than
// maxAge without being touched. The nightly sweep reports these to admins.
func (s *Service) FindStale(ctx context.Context, maxAge time.Duration) ([]models.Lead, error) {
	cutoff := time.Now().Add(-maxAge)

	var stale []models.Lead
	err := s.db.DB.WithContext(ctx).
		Where("lead_status = ? AND updated_at < ?", models.LeadStatusNew, cutoff).
		Order("updated_at ASC").
		Find(&stale).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return stale, nil
}

func (s *Service) authorize(lead *models.Lead, actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if lead.System.AssignedAgentID != nil && *lead.System.AssignedAgentID == actor.UserID {
		return nil
	}
	return domain.NewForbiddenError("you do not have access to this lead")
}
