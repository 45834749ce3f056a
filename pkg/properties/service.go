package properties

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles the property catalog.
type Service struct {
	db  *database.Client
	log logger.Logger
}

// NewService creates a new property service.
func NewService(db *database.Client, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

// PropertyRequest is the create/update payload.
type PropertyRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	PropertyType string   `json:"propertyType" validate:"required,max=50"`
	ProjectID    *uint    `json:"projectId"`
	DeveloperID  *uint    `json:"developerId"`
	LocationID   *uint    `json:"locationId"`
	Price        float64  `json:"price" validate:"gte=0"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int      `json:"bathrooms" validate:"gte=0"`
	AreaSqft     float64  `json:"areaSqft" validate:"gte=0"`
	Description  string   `json:"description"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	Status       string   `json:"status" validate:"omitempty,oneof=active inactive sold"`
}

// ListFilter narrows a property listing. Archived rows only appear when
// IncludeArchived is set.
type ListFilter struct {
	Page            int     `query:"page"`
	Limit           int     `query:"limit"`
	PropertyType    string  `query:"propertyType"`
	Status          string  `query:"status"`
	ProjectID       *uint   `query:"projectId"`
	LocationID      *uint   `query:"locationId"`
	MinPrice        float64 `query:"minPrice"`
	MaxPrice        float64 `query:"maxPrice"`
	IncludeArchived bool    `query:"includeArchived"`
}

// ListResponse is one page of properties.
type ListResponse struct {
	Properties []models.Property     `json:"properties"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// Create stores a new property.
func (s *Service) Create(ctx context.Context, req PropertyRequest) (*models.Property, error) {
	status := req.Status
	if status == "" {
		status = models.PropertyStatusActive
	}

	property := &models.Property{
		Title:        req.Title,
		PropertyType: req.PropertyType,
		ProjectID:    req.ProjectID,
		DeveloperID:  req.DeveloperID,
		LocationID:   req.LocationID,
		Price:        req.Price,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AreaSqft:     req.AreaSqft,
		Description:  req.Description,
		Amenities:    req.Amenities,
		Images:       req.Images,
		Status:       status,
	}
	if property.Amenities == nil {
		property.Amenities = []string{}
	}
	if property.Images == nil {
		property.Images = []string{}
	}

	if err := s.db.DB.WithContext(ctx).Create(property).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("property created", "property_id", property.ID)
	return property, nil
}

// GetByID returns one property, archived included.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.DB.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("property")
		}
		return nil, domain.NewInternalError(err)
	}
	return &property, nil
}

// List returns a filtered, paginated page of properties.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	query := s.db.DB.WithContext(ctx).Model(&models.Property{})

	if !filter.IncludeArchived {
		query = query.Where("status <> ?", models.PropertyStatusArchived)
	}
	if filter.PropertyType != "" {
		query = query.Where("property_type = ?", filter.PropertyType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	var results []models.Property
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("id ASC").Offset(offset).Limit(filter.Limit).Find(&results).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if results == nil {
		results = []models.Property{}
	}

	return &ListResponse{
		Properties: results,
		Pagination: models.NewPaginationInfo(filter.Page, filter.Limit, total),
	}, nil
}

// Update replaces the editable fields of a property.
func (s *Service) Update(ctx context.Context, id uint, req PropertyRequest) (*models.Property, error) {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	property.Title = req.Title
	property.PropertyType = req.PropertyType
	property.ProjectID = req.ProjectID
	property.DeveloperID = req.DeveloperID
	property.LocationID = req.LocationID
	property.Price = req.Price
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.AreaSqft = req.AreaSqft
	property.Description = req.Description
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}
	if req.Images != nil {
		property.Images = req.Images
	}
	if req.Status != "" {
		property.Status = req.Status
	}

	if err := s.db.DB.WithContext(ctx).Save(property).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	return property, nil
}

// Archive soft-deletes a property. The row stays for reporting but drops
// out of default listings.
func (s *Service) Archive(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.Status == models.PropertyStatusArchived {
		return property, nil
	}

	property.Status = models.PropertyStatusArchived
	if err := s.db.DB.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).
		Update("status", models.PropertyStatusArchived).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("property archived", "property_id", id)
	return property, nil
}
