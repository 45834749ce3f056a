package models

import "time"

// User roles. Only these two roles may touch lead endpoints.
const (
	RoleAdmin      = "admin"
	RoleSalesAgent = "sales_agent"
)

// User is a back-office operator: an admin or a sales agent.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" gorm:"size:20;index"`
	// No column default. gorm drops zero values for defaulted columns on
	// Create, which would silently store an inactive user as active.
	Active bool `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAssignable reports whether the user may own leads.
func (u *User) IsAssignable() bool {
	return u.Active && (u.Role == RoleAdmin || u.Role == RoleSalesAgent)
}

// RegisterRequest is the payload for creating a user account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin sales_agent"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful register/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
