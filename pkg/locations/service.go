package locations

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles the location catalog.
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new location service.
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// LocationRequest is the create/update payload.
type LocationRequest struct {
	City        string `json:"city" validate:"required,max=120"`
	State       string `json:"state" validate:"required,max=120"`
	Country     string `json:"country" validate:"omitempty,max=120"`
	Pincode     string `json:"pincode" validate:"omitempty,max=10"`
	Description string `json:"description"`
}

// Create stores a new location. City and state together are unique.
func (s *Service) Create(ctx context.Context, req LocationRequest) (*models.Location, error) {
	country := req.Country
	if country == "" {
		country = "India"
	}

	location := &models.Location{
		City:        req.City,
		State:       req.State,
		Country:     country,
		Pincode:     req.Pincode,
		Description: req.Description,
	}
	if err := s.db.DB.WithContext(ctx).Create(location).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("this city and state combination already exists")
		}
		return nil, domain.NewInternalError(err)
	}
	return location, nil
}

// GetByID returns one location.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := s.db.DB.WithContext(ctx).First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("location")
		}
		return nil, domain.NewInternalError(err)
	}
	return &location, nil
}

// List returns every location, optionally narrowed by state.
func (s *Service) List(ctx context.Context, state string) ([]models.Location, error) {
	query := s.db.DB.WithContext(ctx).Model(&models.Location{})
	if state != "" {
		query = query.Where("state = ?", state)
	}

	var locations []models.Location
	if err := query.Order("state ASC, city ASC").Find(&locations).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if locations == nil {
		locations = []models.Location{}
	}
	return locations, nil
}

// Update replaces the editable fields of a location.
func (s *Service) Update(ctx context.Context, id uint, req LocationRequest) (*models.Location, error) {
	location, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	location.City = req.City
	location.State = req.State
	if req.Country != "" {
		location.Country = req.Country
	}
	location.Pincode = req.Pincode
	location.Description = req.Description

	if err := s.db.DB.WithContext(ctx).Save(location).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("this city and state combination already exists")
		}
		return nil, domain.NewInternalError(err)
	}
	return location, nil
}

// Delete removes a location.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.DB.WithContext(ctx).Delete(&models.Location{}, id)
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("location")
	}
	return nil
}
