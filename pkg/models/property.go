package models

import "time"

// Property statuses. Archived is the soft-delete state: archived rows stay
// in storage but drop out of default listings.
const (
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
	PropertyStatusSold     = "sold"
	PropertyStatusArchived = "archived"
)

// Property is a sellable unit or listing.
type Property struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Title        string   `json:"title" gorm:"index;size:255"`
	PropertyType string   `json:"propertyType" gorm:"size:50;index"`
	ProjectID    *uint    `json:"projectId" gorm:"index"`
	DeveloperID  *uint    `json:"developerId" gorm:"index"`
	LocationID   *uint    `json:"locationId" gorm:"index"`
	Price        float64  `json:"price"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	AreaSqft     float64  `json:"areaSqft"`
	Description  string   `json:"description" gorm:"type:text"`
	Amenities    []string `json:"amenities" gorm:"serializer:json"`
	Images       []string `json:"images" gorm:"serializer:json"`
	Status       string   `json:"status" gorm:"size:20;default:'active';index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project groups properties under a development.
type Project struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"index;size:255"`
	DeveloperID    *uint      `json:"developerId" gorm:"index"`
	LocationID     *uint      `json:"locationId" gorm:"index"`
	Status         string     `json:"status" gorm:"size:30;default:'announced'"`
	Description    string     `json:"description" gorm:"type:text"`
	LaunchDate     *time.Time `json:"launchDate"`
	PossessionDate *time.Time `json:"possessionDate"`
	Amenities      []string   `json:"amenities" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Developer is the builder behind projects.
type Developer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"uniqueIndex;size:255"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone"`
	Description  string    `json:"description" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Location is a city/state/country entry used by properties and projects.
type Location struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	City        string    `json:"city" gorm:"size:120;uniqueIndex:idx_locations_city_state"`
	State       string    `json:"state" gorm:"size:120;uniqueIndex:idx_locations_city_state"`
	Country     string    `json:"country" gorm:"size:120;default:'India'"`
	Pincode     string    `json:"pincode" gorm:"size:10"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
