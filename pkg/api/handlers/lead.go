package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/metrics"
	"github.com/estatedesk/backoffice/pkg/models"
)

// LeadHandler handles lead endpoints.
type LeadHandler struct {
	leadService *leads.Service
	metrics     *metrics.Metrics
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leadService *leads.Service, m *metrics.Metrics) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		metrics:     m,
	}
}

// Create handles POST /leads.
func (h *LeadHandler) Create(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Failed to read request body",
		})
	}

	actor := apimw.ActorFromContext(c)
	lead, err := h.leadService.Create(c.Request().Context(), payload, actor)
	if err != nil {
		h.countValidationFailure(err)
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.LeadsCreated.Inc()
	}

	return c.JSON(http.StatusCreated, lead)
}

// BulkCreate handles POST /leads/bulk.
func (h *LeadHandler) BulkCreate(c echo.Context) error {
	var body struct {
		Leads []json.RawMessage `json:"leads"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Request body must be {\"leads\": [...]}",
		})
	}

	actor := apimw.ActorFromContext(c)
	result, err := h.leadService.BulkCreate(c.Request().Context(), body.Leads, actor)
	if err != nil {
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.LeadsCreated.Add(float64(result.Created))
	}

	// 207 tells the client to inspect per-item results.
	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, result)
}

// Get handles GET /leads/:id.
func (h *LeadHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	lead, err := h.leadService.GetByID(c.Request().Context(), id, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// List handles GET /leads.
func (h *LeadHandler) List(c echo.Context) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	page, err := h.leadService.List(c.Request().Context(), filter, actor)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Update handles PATCH /leads/:id.
func (h *LeadHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Failed to read request body",
		})
	}

	actor := apimw.ActorFromContext(c)
	lead, err := h.leadService.Update(c.Request().Context(), id, payload, actor)
	if err != nil {
		h.countValidationFailure(err)
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete handles DELETE /leads/:id.
func (h *LeadHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	actor := apimw.ActorFromContext(c)
	if err := h.leadService.Delete(c.Request().Context(), id, actor); err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "lead deleted"})
}

// CheckPhone handles GET /leads/check-phone?phone=...
func (h *LeadHandler) CheckPhone(c echo.Context) error {
	phone := c.QueryParam("phone")
	if phone == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_parameter",
			Message: "phone query parameter is required",
		})
	}

	exists, err := h.leadService.ExistsByPhone(c.Request().Context(), phone)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

func (h *LeadHandler) countValidationFailure(err error) {
	if h.metrics == nil {
		return
	}
	if _, ok := domain.AsValidationError(err); ok {
		h.metrics.ValidationFailed.Inc()
	}
}

// badRequest writes a 400 envelope and returns a non-nil error so callers
// of the parse helpers stop processing. Echo skips its error handler once
// the response is committed.
func badRequest(c echo.Context, code, message string) error {
	if err := c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   code,
		Message: message,
	}); err != nil {
		return err
	}
	return echo.ErrBadRequest
}

// parseID reads the :id route parameter.
func parseID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, badRequest(c, "invalid_id", "id must be a positive integer")
	}
	return uint(id), nil
}

func parseListFilter(c echo.Context) (leads.ListFilter, error) {
	filter := leads.ListFilter{
		Page:   atoiDefault(c.QueryParam("page"), 1),
		Limit:  atoiDefault(c.QueryParam("limit"), 50),
		Status: c.QueryParam("status"),
		Search: c.QueryParam("q"),
		Sort:   c.QueryParam("sort"),
	}

	if raw := c.QueryParam("assigned_agent"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, badRequest(c, "invalid_parameter", "assigned_agent must be a positive integer")
		}
		agentID := uint(id)
		filter.AssignedAgentID = &agentID
	}

	for param, dest := range map[string]**time.Time{
		"createdFrom": &filter.CreatedFrom,
		"createdTo":   &filter.CreatedTo,
	} {
		if raw := c.QueryParam(param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return filter, badRequest(c, "invalid_parameter", param+" must be an RFC3339 timestamp")
			}
			*dest = &ts
		}
	}

	return filter, nil
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
