package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/middleware"
	"github.com/iliyamo/forge-dashboard/internal/model"
	"github.com/iliyamo/forge-dashboard/internal/repository"
)

// UserAdminHandler implements the superuser-only user management
// surface. The router guards every route with the superuser role; the
// handlers still enforce the rules that are not role-shaped, like the
// self-deletion ban.
type UserAdminHandler struct {
	Auth  *auth.Service
	Users *repository.UserRepo
}

func NewUserAdminHandler(svc *auth.Service, users *repository.UserRepo) *UserAdminHandler {
	return &UserAdminHandler{Auth: svc, Users: users}
}

type createUserReq struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Password string   `json:"password"`
	RoleIDs  []uint64 `json:"role_ids"`
	ToolIDs  []uint64 `json:"tool_ids"`
}

// updateUserReq is an explicit partial update: only fields present in
// the JSON body are applied, which pointer fields distinguish from
// zero values.
type updateUserReq struct {
	Email    *string  `json:"email"`
	FullName *string  `json:"full_name"`
	IsActive *bool    `json:"is_active"`
	RoleIDs  []uint64 `json:"role_ids"`
	ToolIDs  []uint64 `json:"tool_ids"`
}

type adminUserPart struct {
	userPart
	IsActive bool     `json:"is_active"`
	Tools    []string `json:"tools"` // raw grants, not the effective set
}

func toAdminUserPart(u *model.User) adminUserPart {
	p := adminUserPart{userPart: toUserPart(u), IsActive: u.IsActive}
	p.Tools = make([]string, 0, len(u.Tools))
	for _, t := range u.Tools {
		p.Tools = append(p.Tools, t.Name)
	}
	return p
}

// List returns all users with their role names and raw tool grants.
func (h *UserAdminHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	out := make([]adminUserPart, 0, len(users))
	for i := range users {
		out = append(out, toAdminUserPart(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single user by id.
func (h *UserAdminHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.FindByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, toAdminUserPart(u))
}

// Create adds a user. The new password passes through the same strength
// policy as self-service resets.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}
	if issues := h.Auth.Policy().Issues(req.Password); len(issues) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weak password", "issues": issues})
	}

	hash, err := h.Auth.Hasher().Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx := c.Request().Context()
	id, err := h.Users.Create(ctx, req.Username, req.Email, req.FullName, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	}
	if req.RoleIDs != nil || req.ToolIDs != nil {
		upd := repository.UserUpdate{RoleIDs: req.RoleIDs, ToolIDs: req.ToolIDs}
		if err := h.Users.Update(ctx, id, upd); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign grants failed"})
		}
	}
	u, err := h.Users.FindByID(ctx, id)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusCreated, toAdminUserPart(u))
}

// Update applies a partial update to a user's profile, active flag and
// grant assignments.
func (h *UserAdminHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	existing, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	if existing == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	upd := repository.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
		RoleIDs:  req.RoleIDs,
		ToolIDs:  req.ToolIDs,
	}
	if err := h.Users.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.FindByID(ctx, id)
	if err != nil || u == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, toAdminUserPart(u))
}

// Delete removes a user. Deleting your own account is forbidden for
// everyone, superusers included.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if !auth.CanSelfDelete(actor, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete your own account"})
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
