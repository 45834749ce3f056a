package leadnote

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles free-form notes agents leave on leads.
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new lead note service.
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// NoteRequest is the payload for creating or editing a note.
type NoteRequest struct {
	Body   string `json:"body" validate:"required,max=5000"`
	Pinned bool   `json:"pinned"`
}

// Create adds a note to a lead.
func (s *Service) Create(ctx context.Context, leadID uint, actor domain.Actor, req NoteRequest) (*models.LeadNote, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, domain.NewValidationError("note body must not be empty")
	}

	if err := s.authorizeLead(ctx, leadID, actor); err != nil {
		return nil, err
	}

	note := &models.LeadNote{
		LeadID: leadID,
		UserID: actor.UserID,
		Body:   req.Body,
		Pinned: req.Pinned,
	}
	if err := s.db.DB.WithContext(ctx).Create(note).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("lead note created", "lead_id", leadID, "note_id", note.ID, "by", actor.UserID)
	return note, nil
}

// List returns all notes on a lead, pinned first, then newest first.
func (s *Service) List(ctx context.Context, leadID uint, actor domain.Actor) ([]models.LeadNote, error) {
	if err := s.authorizeLead(ctx, leadID, actor); err != nil {
		return nil, err
	}

	var notes []models.LeadNote
	err := s.db.DB.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("pinned DESC, created_at DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if notes == nil {
		notes = []models.LeadNote{}
	}
	return notes, nil
}

// Update edits a note. Only the author or an admin may edit.
func (s *Service) Update(ctx context.Context, noteID uint, actor domain.Actor, req NoteRequest) (*models.LeadNote, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, domain.NewValidationError("note body must not be empty")
	}

	note, err := s.getEditable(ctx, noteID, actor)
	if err != nil {
		return nil, err
	}

	note.Body = req.Body
	note.Pinned = req.Pinned
	if err := s.db.DB.WithContext(ctx).Save(note).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return note, nil
}

// Delete removes a note. Only the author or an admin may delete.
func (s *Service) Delete(ctx context.Context, noteID uint, actor domain.Actor) error {
	note, err := s.getEditable(ctx, noteID, actor)
	if err != nil {
		return err
	}

	if err := s.db.DB.WithContext(ctx).Delete(&models.LeadNote{}, note.ID).Error; err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

func (s *Service) getEditable(ctx context.Context, noteID uint, actor domain.Actor) (*models.LeadNote, error) {
	var note models.LeadNote
	if err := s.db.DB.WithContext(ctx).First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("note")
		}
		return nil, domain.NewInternalError(err)
	}
	if !actor.IsAdmin() && note.UserID != actor.UserID {
		return nil, domain.NewForbiddenError("you can only edit your own notes")
	}
	return &note, nil
}

// authorizeLead applies the lead read policy to note operations.
func (s *Service) authorizeLead(ctx context.Context, leadID uint, actor domain.Actor) error {
	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("lead")
		}
		return domain.NewInternalError(err)
	}
	if actor.IsAdmin() {
		return nil
	}
	if lead.System.AssignedAgentID != nil && *lead.System.AssignedAgentID == actor.UserID {
		return nil
	}
	return domain.NewForbiddenError("you do not have access to this lead")
}
