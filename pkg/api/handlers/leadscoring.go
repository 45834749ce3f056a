package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	"github.com/estatedesk/backoffice/pkg/leadscoring"
)

// ScoringHandler handles lead scoring endpoints.
type ScoringHandler struct {
	scoringService *leadscoring.Service
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(scoringService *leadscoring.Service) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

// Calculate handles GET /leads/:id/score. Recomputes and persists both
// scores, returning the full breakdown.
func (h *ScoringHandler) Calculate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	score, err := h.scoringService.CalculateScore(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, score)
}

// RecalculateAll handles POST /admin/leads/recalculate-scores.
func (h *ScoringHandler) RecalculateAll(c echo.Context) error {
	updated, err := h.scoringService.RecalculateAll(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}
