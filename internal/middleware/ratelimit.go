package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/ratelimit"
)

// RateLimit returns middleware that consults the abuse guard before
// anything else in the chain. The client identifier is the remote IP
// (first forwarded hop via Echo's RealIP). Guard store failures fail
// open: a broken Redis must not take authentication down with it.
func RateLimit(guard *ratelimit.Guard) echo.MiddlewareFunc {
	if guard == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.RealIP()
			if id == "" {
				id = "unknown"
			}
			retryAfter, err := guard.Allow(c.Request().Context(), id)
			if err == nil {
				return next(c)
			}
			switch {
			case errors.Is(err, ratelimit.ErrBlocked):
				secs := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "blocked",
					"message":     "too many violations, try again later",
					"retry_after": secs,
				})
			case errors.Is(err, ratelimit.ErrRateLimited):
				secs := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			default:
				c.Logger().Warnf("[ratelimit] store error for id=%s: %v", id, err)
				return next(c)
			}
		}
	}
}
