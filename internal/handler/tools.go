package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/middleware"
	"github.com/iliyamo/forge-dashboard/internal/repository"
)

// ToolHandler serves the user-facing tool surface: the effective tool
// list and per-tool gate checks.
type ToolHandler struct {
	Tools *repository.ToolRepo
}

func NewToolHandler(tools *repository.ToolRepo) *ToolHandler {
	return &ToolHandler{Tools: tools}
}

// List returns the authenticated user's effective tools. All call sites
// go through auth.EffectiveTools, so the superuser override and the
// active-flag filter are applied in exactly one place.
func (h *ToolHandler) List(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	active, err := h.Tools.ListActiveTools(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	return c.JSON(http.StatusOK, toToolParts(auth.EffectiveTools(u, active)))
}

// Access answers whether the authenticated user can reach one named
// tool: 200 with the tool's route when allowed, 403 otherwise. The
// dashboard frontend calls this before navigating.
func (h *ToolHandler) Access(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	name := c.Param("name")
	active, err := h.Tools.ListActiveTools(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	for _, t := range auth.EffectiveTools(u, active) {
		if t.Name == name {
			return c.JSON(http.StatusOK, echo.Map{
				"tool":  t.Name,
				"route": t.Route,
				"user":  u.Username,
			})
		}
	}
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
