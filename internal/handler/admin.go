package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/model"
	"github.com/iliyamo/forge-dashboard/internal/repository"
)

// AdminHandler serves the superuser-only registry surface: the full
// tool catalog (active or not) and the role catalog.
type AdminHandler struct {
	Tools *repository.ToolRepo
	Roles *repository.RoleRepo
}

func NewAdminHandler(tools *repository.ToolRepo, roles *repository.RoleRepo) *AdminHandler {
	return &AdminHandler{Tools: tools, Roles: roles}
}

type createToolReq struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Route       string `json:"route"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"is_active"`
}

// updateToolReq only applies fields present in the body.
type updateToolReq struct {
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	Route       *string `json:"route"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"is_active"`
}

type createRoleReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rolePart struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type adminToolPart struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Route       string `json:"route"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func toAdminToolPart(t model.Tool) adminToolPart {
	return adminToolPart{
		ID: t.ID, Name: t.Name, DisplayName: t.DisplayName,
		Description: t.Description, Route: t.Route, Icon: t.Icon, IsActive: t.IsActive,
	}
}

// ListTools returns the whole tool catalog, inactive tools included.
func (h *AdminHandler) ListTools(c echo.Context) error {
	tools, err := h.Tools.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	out := make([]adminToolPart, 0, len(tools))
	for _, t := range tools {
		out = append(out, toAdminToolPart(t))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateTool registers a new tool. New tools default to active.
func (h *AdminHandler) CreateTool(c echo.Context) error {
	var req createToolReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/display_name required"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ctx := c.Request().Context()
	id, err := h.Tools.Create(ctx, model.Tool{
		Name: req.Name, DisplayName: req.DisplayName, Description: req.Description,
		Route: req.Route, Icon: req.Icon, IsActive: active,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tool failed"})
	}
	t, err := h.Tools.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tool failed"})
	}
	return c.JSON(http.StatusCreated, toAdminToolPart(t))
}

// UpdateTool applies a partial update. Flipping is_active off here
// immediately removes the tool from every user's effective list; grant
// rows stay untouched so re-activation restores prior access.
func (h *AdminHandler) UpdateTool(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateToolReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	if _, err := h.Tools.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tool not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	upd := repository.ToolUpdate{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Route:       req.Route,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	}
	if err := h.Tools.Update(ctx, id, upd); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	t, err := h.Tools.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tool failed"})
	}
	return c.JSON(http.StatusOK, toAdminToolPart(t))
}

// CreateRole registers a new role. Role names are the keys the
// authorization checks match on, so they are trimmed but otherwise
// stored as given.
func (h *AdminHandler) CreateRole(c echo.Context) error {
	var req createRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	id, err := h.Roles.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrRoleExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "role already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create role failed"})
	}
	return c.JSON(http.StatusCreated, rolePart{ID: id, Name: req.Name, Description: req.Description})
}

// ListRoles returns the role catalog.
func (h *AdminHandler) ListRoles(c echo.Context) error {
	roles, err := h.Roles.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	out := make([]rolePart, 0, len(roles))
	for _, r := range roles {
		out = append(out, rolePart{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return c.JSON(http.StatusOK, out)
}
