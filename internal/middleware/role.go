package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
)

// RequireAnyRole returns middleware that rejects authenticated users
// lacking every one of the given roles with 403. It assumes
// Authenticate ran earlier in the chain. Composite requirements such as
// maintenance-or-superuser are expressed by listing both roles.
func RequireAnyRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !auth.HasAnyRole(u, roles) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireRole is RequireAnyRole for a single role.
func RequireRole(role string) echo.MiddlewareFunc {
	return RequireAnyRole(role)
}
