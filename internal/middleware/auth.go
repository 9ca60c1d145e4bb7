// Package middleware provides the request-path guards: rate limiting,
// bearer-token authentication and role authorization. Handlers behind
// these guards can assume a resolved, active user in the request
// context.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/model"
)

// userContextKey is where Authenticate stores the resolved user.
const userContextKey = "current_user"

// Authenticate returns middleware that extracts the Bearer access
// token, resolves it to a live user record and stores the user in the
// context. The Authorization header is the sole token carrier; a
// missing or malformed header is an authentication failure (401), never
// a crash. A store outage maps to 503 rather than being disguised as
// bad credentials.
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			u, err := svc.Resolve(c.Request().Context(), raw, auth.TokenAccess)
			if err != nil {
				if errors.Is(err, auth.ErrDependencyUnavailable) {
					return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Authenticate, or nil when the
// request did not pass through it.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}
