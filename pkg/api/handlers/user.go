package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/models"
	"github.com/estatedesk/backoffice/pkg/users"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	userService *users.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *users.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /users.
func (h *UserHandler) List(c echo.Context) error {
	actor := apimw.ActorFromContext(c)
	list, err := h.userService.List(c.Request().Context(), actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": list})
}

// ListAgents handles GET /agents. Returns active sales agents only, for
// assignment pickers.
func (h *UserHandler) ListAgents(c echo.Context) error {
	agents, err := h.userService.ListAgents(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"agents": agents})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// SetActive handles PATCH /users/:id/active.
func (h *UserHandler) SetActive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Body must be {\"active\": true|false}",
		})
	}

	actor := apimw.ActorFromContext(c)
	user, err := h.userService.SetActive(c.Request().Context(), id, *req.Active, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// SetRole handles PATCH /users/:id/role.
func (h *UserHandler) SetRole(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Body must be {\"role\": \"...\"}",
		})
	}

	actor := apimw.ActorFromContext(c)
	user, err := h.userService.SetRole(c.Request().Context(), id, req.Role, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
