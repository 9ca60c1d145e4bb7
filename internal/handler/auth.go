package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/middleware"
	"github.com/iliyamo/forge-dashboard/internal/model"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	Auth  *auth.Service
	Tools auth.ToolRegistry
}

func NewAuthHandler(svc *auth.Service, tools auth.ToolRegistry) *AuthHandler {
	return &AuthHandler{Auth: svc, Tools: tools}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type resetPasswordReq struct {
	NewPassword string `json:"new_password"`
}

type userPart struct {
	ID       uint64   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type toolPart struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Route       string `json:"route"`
	Icon        string `json:"icon,omitempty"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

type loginResp struct {
	User   userPart  `json:"user"`
	Tokens tokenResp `json:"tokens"`
}

func toUserPart(u *model.User) userPart {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName, Roles: roles}
}

func toToolParts(tools []model.Tool) []toolPart {
	out := make([]toolPart, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolPart{
			Name: t.Name, DisplayName: t.DisplayName,
			Description: t.Description, Route: t.Route, Icon: t.Icon,
		})
	}
	return out
}

func (h *AuthHandler) tokens(pair auth.TokenPair) tokenResp {
	return tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Auth.Codec().AccessTTL() / time.Second),
	}
}

// Login verifies username/password and returns a token pair. Unknown
// username, wrong password and deactivated account all answer the same
// 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx := c.Request().Context()
	u, err := h.Auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDependencyUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	pair, err := h.Auth.IssueSession(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, loginResp{User: toUserPart(u), Tokens: h.tokens(pair)})
}

// Refresh exchanges a valid refresh token for a new pair. Expired,
// malformed and access-typed tokens all answer the same 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	u, pair, err := h.Auth.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrDependencyUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	return c.JSON(http.StatusOK, loginResp{User: toUserPart(u), Tokens: h.tokens(pair)})
}

// Me returns the authenticated user together with the effective tool
// list (superuser override and active flag already applied).
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	active, err := h.Tools.ListActiveTools(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  toUserPart(u),
		"tools": toToolParts(auth.EffectiveTools(u, active)),
	})
}

// ResetPassword lets the authenticated user change their own password.
// Policy violations come back itemized so the user can fix them.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password required"})
	}

	err := h.Auth.ResetPassword(c.Request().Context(), u.Username, req.NewPassword)
	if err != nil {
		var weak *auth.WeakPasswordError
		switch {
		case errors.As(err, &weak):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "weak password", "issues": weak.Issues})
		case errors.Is(err, auth.ErrDependencyUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
