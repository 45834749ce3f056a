package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/leadlifecycle"
	"github.com/estatedesk/backoffice/pkg/metrics"
	"github.com/estatedesk/backoffice/pkg/models"
)

// LifecycleHandler handles lead status endpoints.
type LifecycleHandler struct {
	lifecycleService *leadlifecycle.Service
	metrics          *metrics.Metrics
	validator        *validator.Validate
}

// NewLifecycleHandler creates a new lifecycle handler.
func NewLifecycleHandler(lifecycleService *leadlifecycle.Service, m *metrics.Metrics) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleService: lifecycleService,
		metrics:          m,
		validator:        validator.New(),
	}
}

// UpdateStatus handles PATCH /leads/:id/status.
func (h *LifecycleHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req leadlifecycle.UpdateStatusRequest
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

	actor := apimw.ActorFromContext(c)
	resp, err := h.lifecycleService.UpdateStatus(c.Request().Context(), id, actor, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	if h.metrics != nil && resp.PreviousStatus != resp.NewStatus {
		h.metrics.StatusChanges.WithLabelValues(resp.NewStatus).Inc()
	}

	return c.JSON(http.StatusOK, resp)
}

// History handles GET /leads/:id/status-history.
func (h *LifecycleHandler) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	history, err := h.lifecycleService.GetHistory(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"history": history})
}

// StatusCounts handles GET /leads/status-counts.
func (h *LifecycleHandler) StatusCounts(c echo.Context) error {
	actor := apimw.ActorFromContext(c)
	counts, err := h.lifecycleService.StatusCounts(c.Request().Context(), actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"counts": counts})
}
