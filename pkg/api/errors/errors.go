package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/models"
)

// statusFor maps domain error codes to HTTP status codes.
var statusFor = map[string]int{
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeDuplicatePhone:   http.StatusConflict,
	domain.ErrCodeAgentNotEligible: http.StatusBadRequest,
	domain.ErrCodeUnauthorized:     http.StatusUnauthorized,
	domain.ErrCodeForbidden:        http.StatusForbidden,
	domain.ErrCodeConflict:         http.StatusConflict,
	domain.ErrCodeBadRequest:       http.StatusBadRequest,
	domain.ErrCodeInternal:         http.StatusInternalServerError,
}

// Respond writes a service error as the uniform JSON envelope. Field
// validation errors carry their per-field list; everything else carries
// the domain code and message.
func Respond(c echo.Context, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "One or more fields are invalid",
			Fields:  ve.Fields,
		})
	}

	code := domain.GetErrorCode(err)
	status, ok := statusFor[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var de *domain.DomainError
	if stderrors.As(err, &de) {
		message = de.Message
	}
	if status == http.StatusInternalServerError {
		// Never leak internals to the client.
		message = "An internal error occurred"
	}

	return c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
