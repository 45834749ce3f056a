package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	"github.com/estatedesk/backoffice/pkg/models"
	"github.com/estatedesk/backoffice/pkg/properties"
)

// PropertyHandler handles property catalog endpoints.
type PropertyHandler struct {
	propertyService *properties.Service
	validator       *validator.Validate
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(propertyService *properties.Service) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		validator:       validator.New(),
	}
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(c echo.Context) error {
	req, err := h.bindProperty(c)
	if err != nil {
		return err
	}

	property, err := h.propertyService.Create(c.Request().Context(), *req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, property)
}

// Get handles GET /properties/:id.
func (h *PropertyHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	property, err := h.propertyService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

// List handles GET /properties.
func (h *PropertyHandler) List(c echo.Context) error {
	var filter properties.ListFilter
	if err := c.Bind(&filter); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_parameter",
			Message: "Invalid query parameters",
		})
	}

	page, err := h.propertyService.List(c.Request().Context(), filter)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Update handles PUT /properties/:id.
func (h *PropertyHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	req, err := h.bindProperty(c)
	if err != nil {
		return err
	}

	property, err := h.propertyService.Update(c.Request().Context(), id, *req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

// Archive handles DELETE /properties/:id. Properties are archived rather
// than removed so lead references stay resolvable.
func (h *PropertyHandler) Archive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	property, err := h.propertyService.Archive(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) bindProperty(c echo.Context) (*properties.PropertyRequest, error) {
	var req properties.PropertyRequest
	if err := c.Bind(&req); err != nil {
		return nil, badRequest(c, "invalid_body", "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return nil, badRequest(c, "validation_error", err.Error())
	}
	return &req, nil
}
