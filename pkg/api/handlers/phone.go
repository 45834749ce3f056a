package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/models"
	"github.com/estatedesk/backoffice/pkg/phone"
)

// PhoneHandler handles phone number validation endpoints.
type PhoneHandler struct{}

// NewPhoneHandler creates a new phone handler.
func NewPhoneHandler() *PhoneHandler {
	return &PhoneHandler{}
}

// Validate handles GET /phone/validate?phone=...&country=...
func (h *PhoneHandler) Validate(c echo.Context) error {
	number := c.QueryParam("phone")
	if number == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_parameter",
			Message: "phone query parameter is required",
		})
	}

	result, err := phone.ValidatePhone(number, c.QueryParam("country"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// Normalize handles GET /phone/normalize?phone=...&country=...
func (h *PhoneHandler) Normalize(c echo.Context) error {
	number := c.QueryParam("phone")
	if number == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_parameter",
			Message: "phone query parameter is required",
		})
	}

	normalized, err := phone.Normalize(number, c.QueryParam("country"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"phone": normalized})
}
