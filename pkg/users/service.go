package users

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/config"
	"github.com/estatedesk/backoffice/pkg/auth"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles user accounts and authentication.
type Service struct {
	db  *database.Client
	cfg *config.Config
	log logger.Logger
}

// NewService creates a new user service.
func NewService(db *database.Client, cfg *config.Config, log logger.Logger) *Service {
	return &Service{db: db, cfg: cfg, log: log}
}

// Register creates a user account and returns a signed token. The role
// defaults to sales_agent; only an admin caller may grant admin.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest, actor *domain.Actor) (*models.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleSalesAgent
	}
	if role == models.RoleAdmin && (actor == nil || !actor.IsAdmin()) {
		return nil, domain.NewForbiddenError("only admins can create admin accounts")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.db.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("an account with this email already exists")
		}
		return nil, domain.NewInternalError(err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, s.cfg.JWTSecret, s.cfg.JWTExpirationHours)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewUnauthorizedError()
		}
		return nil, domain.NewInternalError(err)
	}

	if !user.Active {
		return nil, domain.NewForbiddenError("this account has been deactivated")
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, domain.NewUnauthorizedError()
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, s.cfg.JWTSecret, s.cfg.JWTExpirationHours)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// GetByID returns one user.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, domain.NewInternalError(err)
	}
	return &user, nil
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context, actor domain.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can list users")
	}

	var users []models.User
	if err := s.db.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// ListAgents returns the active sales agents, for assignment pickers.
func (s *Service) ListAgents(ctx context.Context) ([]models.User, error) {
	var agents []models.User
	err := s.db.DB.WithContext(ctx).
		Where("role = ? AND active = ?", models.RoleSalesAgent, true).
		Order("id ASC").
		Find(&agents).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if agents == nil {
		agents = []models.User{}
	}
	return agents, nil
}

// SetActive activates or deactivates an account. Admin only; admins
// cannot deactivate themselves.
func (s *Service) SetActive(ctx context.Context, id uint, active bool, actor domain.Actor) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can change account state")
	}
	if id == actor.UserID && !active {
		return nil, domain.NewConflictError("you cannot deactivate your own account")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = active
	if err := s.db.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("active", active).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("user state changed", "user_id", id, "active", active, "by", actor.UserID)
	return user, nil
}

// SetRole changes an account's role. Admin only.
func (s *Service) SetRole(ctx context.Context, id uint, role string, actor domain.Actor) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can change roles")
	}
	if role != models.RoleAdmin && role != models.RoleSalesAgent {
		return nil, domain.NewValidationError("role must be admin or sales_agent")
	}
	if id == actor.UserID && role != models.RoleAdmin {
		return nil, domain.NewConflictError("you cannot demote your own account")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.db.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("role", role).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return user, nil
}
