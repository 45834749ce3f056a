package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/leadassignment"
	"github.com/estatedesk/backoffice/pkg/metrics"
	"github.com/estatedesk/backoffice/pkg/models"
)

// AssignmentHandler handles lead assignment endpoints.
type AssignmentHandler struct {
	assignmentService *leadassignment.Service
	metrics           *metrics.Metrics
	validator         *validator.Validate
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(assignmentService *leadassignment.Service, m *metrics.Metrics) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		metrics:           m,
		validator:         validator.New(),
	}
}

// Assign handles PATCH /leads/:id/assign-agent.
func (h *AssignmentHandler) Assign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req leadassignment.AssignRequest
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
	lead, err := h.assignmentService.Assign(c.Request().Context(), id, actor, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.LeadsAssigned.WithLabelValues("manual").Inc()
	}
	return c.JSON(http.StatusOK, lead)
}

// AutoAssign handles POST /leads/:id/auto-assign.
func (h *AssignmentHandler) AutoAssign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	lead, err := h.assignmentService.AutoAssign(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.LeadsAssigned.WithLabelValues("auto").Inc()
	}
	return c.JSON(http.StatusOK, lead)
}

// Unassign handles DELETE /leads/:id/assign-agent.
func (h *AssignmentHandler) Unassign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	lead, err := h.assignmentService.Unassign(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// History handles GET /leads/:id/assignment-history.
func (h *AssignmentHandler) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	history, err := h.assignmentService.GetHistory(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"assignments": history})
}

// MyLeads handles GET /user/assigned-leads. Returns the caller's own book.
func (h *AssignmentHandler) MyLeads(c echo.Context) error {
	actor := apimw.ActorFromContext(c)
	leads, err := h.assignmentService.GetAgentLeads(c.Request().Context(), actor.UserID, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"leads": leads})
}

// AgentLeads handles GET /agents/:id/leads.
func (h *AssignmentHandler) AgentLeads(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	leads, err := h.assignmentService.GetAgentLeads(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"leads": leads})
}
