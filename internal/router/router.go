// Package router wires handlers and middleware onto the Echo instance.
// The request path is: rate-limit guard, then bearer authentication,
// then role/tool checks, then the handler.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/handler"
	"github.com/iliyamo/forge-dashboard/internal/middleware"
	"github.com/iliyamo/forge-dashboard/internal/ratelimit"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Tools       *handler.ToolHandler
	UserAdmin   *handler.UserAdminHandler
	Admin       *handler.AdminHandler
	Maintenance *handler.MaintenanceHandler
}

// Register mounts all routes. guard may be nil, which disables rate
// limiting (single-process dev without Redis still works).
func Register(e *echo.Echo, h Handlers, svc *auth.Service, guard *ratelimit.Guard) {
	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(guard)
	authed := middleware.Authenticate(svc)

	// Session endpoints. Login and refresh are the abuse targets, so
	// they sit behind the guard but not behind authentication.
	authGroup := e.Group("/v1/auth", limited)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.GET("/me", h.Auth.Me, authed)
	authGroup.POST("/reset-password", h.Auth.ResetPassword, authed)

	// Tool surface for every authenticated user.
	tools := e.Group("/v1/tools", limited, authed)
	tools.GET("", h.Tools.List)
	tools.GET("/:name/access", h.Tools.Access)

	// Maintenance-request workflow. Everyone may submit and list their
	// own; status transitions need the maintenance or superuser role.
	maint := e.Group("/v1/maintenance-requests", limited, authed)
	maint.POST("", h.Maintenance.Create)
	maint.GET("", h.Maintenance.List)
	maint.GET("/:id", h.Maintenance.Get)
	maint.PATCH("/:id/status", h.Maintenance.UpdateStatus,
		middleware.RequireAnyRole(auth.MaintenanceViewers...))
	maint.DELETE("/:id", h.Maintenance.Delete)

	// Admin surface, superuser only.
	admin := e.Group("/v1/admin", limited, authed, middleware.RequireRole(auth.RoleSuperuser))
	admin.GET("/users", h.UserAdmin.List)
	admin.POST("/users", h.UserAdmin.Create)
	admin.GET("/users/:id", h.UserAdmin.Get)
	admin.PATCH("/users/:id", h.UserAdmin.Update)
	admin.DELETE("/users/:id", h.UserAdmin.Delete)
	admin.GET("/tools", h.Admin.ListTools)
	admin.POST("/tools", h.Admin.CreateTool)
	admin.PATCH("/tools/:id", h.Admin.UpdateTool)
	admin.GET("/roles", h.Admin.ListRoles)
	admin.POST("/roles", h.Admin.CreateRole)
}
