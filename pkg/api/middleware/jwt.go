package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/auth"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/models"
)

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return JWTMiddlewareWithBlacklist(secret, nil, nil)
}

// JWTMiddlewareWithBlacklist creates a JWT authentication middleware with
// blacklist support. When db is given, the user row is loaded so
// deactivated accounts are rejected even with a valid token.
func JWTMiddlewareWithBlacklist(secret string, blacklist *auth.TokenBlacklist, db *database.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}
			token := parts[1]

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token",
					Message: err.Error(),
				})
			}

			if db != nil {
				var user models.User
				if err := db.DB.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
					return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
						Error:   "user_not_found",
						Message: "User account not found",
					})
				}
				if !user.Active {
					return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
						Error:   "account_disabled",
						Message: "This account has been deactivated",
					})
				}
			}

			// Store token for potential logout.
			c.Set("token", token)

			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)

			return next(c)
		}
	}
}

// ActorFromContext rebuilds the service-layer actor from the claims the
// JWT middleware stored on the Echo context.
func ActorFromContext(c echo.Context) domain.Actor {
	actor := domain.Actor{}
	if id, ok := c.Get("user_id").(uint); ok {
		actor.UserID = id
	}
	if email, ok := c.Get("user_email").(string); ok {
		actor.Email = email
	}
	if role, ok := c.Get("user_role").(string); ok {
		actor.Role = role
	}
	return actor
}
