package projects

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles development projects.
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new project service.
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// ProjectRequest is the create/update payload.
type ProjectRequest struct {
	Name           string     `json:"name" validate:"required,max=255"`
	DeveloperID    *uint      `json:"developerId"`
	LocationID     *uint      `json:"locationId"`
	Status         string     `json:"status" validate:"omitempty,oneof=announced launched under_construction completed"`
	Description    string     `json:"description"`
	LaunchDate     *time.Time `json:"launchDate"`
	PossessionDate *time.Time `json:"possessionDate"`
	Amenities      []string   `json:"amenities"`
}

// Create stores a new project.
func (s *Service) Create(ctx context.Context, req ProjectRequest) (*models.Project, error) {
	status := req.Status
	if status == "" {
		status = "announced"
	}

	project := &models.Project{
		Name:           req.Name,
		DeveloperID:    req.DeveloperID,
		LocationID:     req.LocationID,
		Status:         status,
		Description:    req.Description,
		LaunchDate:     req.LaunchDate,
		PossessionDate: req.PossessionDate,
		Amenities:      req.Amenities,
	}
	if project.Amenities == nil {
		project.Amenities = []string{}
	}

	if err := s.db.DB.WithContext(ctx).Create(project).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("project created", "project_id", project.ID)
	return project, nil
}

// GetByID returns one project.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.DB.WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("project")
		}
		return nil, domain.NewInternalError(err)
	}
	return &project, nil
}

// List returns every project, optionally narrowed by developer.
func (s *Service) List(ctx context.Context, developerID *uint) ([]models.Project, error) {
	query := s.db.DB.WithContext(ctx).Model(&models.Project{})
	if developerID != nil {
		query = query.Where("developer_id = ?", *developerID)
	}

	var projects []models.Project
	if err := query.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Update replaces the editable fields of a project.
func (s *Service) Update(ctx context.Context, id uint, req ProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.DeveloperID = req.DeveloperID
	project.LocationID = req.LocationID
	project.Description = req.Description
	project.LaunchDate = req.LaunchDate
	project.PossessionDate = req.PossessionDate
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Amenities != nil {
		project.Amenities = req.Amenities
	}

	if err := s.db.DB.WithContext(ctx).Save(project).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return project, nil
}

// Delete removes a project. Properties pointing at it keep their id and
// resolve to nothing, matching how listings are cleaned up manually.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.DB.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("project")
	}
	return nil
}
