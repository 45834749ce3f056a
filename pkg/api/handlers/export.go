package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/export"
	"github.com/estatedesk/backoffice/pkg/metrics"
	"github.com/estatedesk/backoffice/pkg/models"
)

// ExportHandler handles lead export endpoints.
type ExportHandler struct {
	exportService *export.Service
	metrics       *metrics.Metrics
	validator     *validator.Validate
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService *export.Service, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		metrics:       m,
		validator:     validator.New(),
	}
}

// Create handles POST /exports.
func (h *ExportHandler) Create(c echo.Context) error {
	var req export.Request
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
	resp, err := h.exportService.Export(c.Request().Context(), req, actor)
	if err != nil {
		return errors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.ExportsCreated.WithLabelValues(req.Format).Inc()
	}
	return c.JSON(http.StatusCreated, resp)
}

// Download handles GET /exports/:filename.
func (h *ExportHandler) Download(c echo.Context) error {
	filename := c.Param("filename")
	path, err := h.exportService.FilePath(filename)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.Attachment(path, filename)
}
