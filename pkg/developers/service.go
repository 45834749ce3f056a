package developers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles builder records.
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new developer service.
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// DeveloperRequest is the create/update payload.
type DeveloperRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Website      string `json:"website" validate:"omitempty,url"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
	Description  string `json:"description"`
}

// Create stores a new developer. Names are unique.
func (s *Service) Create(ctx context.Context, req DeveloperRequest) (*models.Developer, error) {
	developer := &models.Developer{
		Name:         req.Name,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Description:  req.Description,
	}
	if err := s.db.DB.WithContext(ctx).Create(developer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("a developer with this name already exists")
		}
		return nil, domain.NewInternalError(err)
	}
	return developer, nil
}

// GetByID returns one developer.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Developer, error) {
	var developer models.Developer
	if err := s.db.DB.WithContext(ctx).First(&developer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("developer")
		}
		return nil, domain.NewInternalError(err)
	}
	return &developer, nil
}

// List returns every developer.
func (s *Service) List(ctx context.Context) ([]models.Developer, error) {
	var developers []models.Developer
	if err := s.db.DB.WithContext(ctx).Order("name ASC").Find(&developers).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if developers == nil {
		developers = []models.Developer{}
	}
	return developers, nil
}

// Update replaces the editable fields of a developer.
func (s *Service) Update(ctx context.Context, id uint, req DeveloperRequest) (*models.Developer, error) {
	developer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	developer.Name = req.Name
	developer.Website = req.Website
	developer.ContactEmail = req.ContactEmail
	developer.ContactPhone = req.ContactPhone
	developer.Description = req.Description

	if err := s.db.DB.WithContext(ctx).Save(developer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("a developer with this name already exists")
		}
		return nil, domain.NewInternalError(err)
	}
	return developer, nil
}

// Delete removes a developer.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.DB.WithContext(ctx).Delete(&models.Developer{}, id)
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("developer")
	}
	return nil
}
