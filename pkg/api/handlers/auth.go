package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/auth"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/metrics"
	"github.com/estatedesk/backoffice/pkg/models"
	"github.com/estatedesk/backoffice/pkg/users"
)

// AuthHandler handles register, login, logout and profile endpoints.
type AuthHandler struct {
	userService *users.Service
	blacklist   *auth.TokenBlacklist
	metrics     *metrics.Metrics
	validator   *validator.Validate
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userService *users.Service, blacklist *auth.TokenBlacklist, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		blacklist:   blacklist,
		metrics:     m,
		validator:   validator.New(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	// Anonymous registration is allowed; the actor only matters when an
	// admin role is requested.
	resp, err := h.userService.Register(c.Request().Context(), req, actorIfAuthenticated(c))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	resp, err := h.userService.Login(c.Request().Context(), req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LoginAttempts.WithLabelValues("failed").Inc()
		}
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues("success").Inc()
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout. The current token is revoked until
// its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_token",
			Message: "No token to revoke",
		})
	}

	if h.blacklist != nil {
		// Keep the entry only as long as the token could still be valid.
		if err := h.blacklist.Add(c.Request().Context(), token, 72*time.Hour); err != nil {
			return errors.Respond(c, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// actorIfAuthenticated returns the caller's actor when the JWT middleware
// ran, nil on public routes.
func actorIfAuthenticated(c echo.Context) *domain.Actor {
	if _, ok := c.Get("user_id").(uint); !ok {
		return nil
	}
	actor := apimw.ActorFromContext(c)
	return &actor
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	actor := apimw.ActorFromContext(c)
	user, err := h.userService.GetByID(c.Request().Context(), actor.UserID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
