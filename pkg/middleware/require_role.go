package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/models"
)

// RequireRole rejects requests whose authenticated user does not hold one
// of the given roles. Must run after the JWT middleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("user_role").(string)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Authentication required",
				})
			}
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "forbidden",
					Message: "You do not have permission to access this resource",
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin is shorthand for the admin-only routes.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}
