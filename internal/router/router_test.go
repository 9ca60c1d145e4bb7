package router

import (
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/handler"
)

func TestRegisterMountsFullSurface(t *testing.T) {
	codec, err := auth.NewCodec(
		"router-access-secret-0123456789abcdef",
		"router-refresh-secret-0123456789abcde",
		30*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)
	svc := auth.NewService(nil, auth.NewHasher(4), codec, auth.DefaultPasswordPolicy())

	e := echo.New()
	Register(e, Handlers{
		Auth:        handler.NewAuthHandler(svc, nil),
		Tools:       handler.NewToolHandler(nil),
		UserAdmin:   handler.NewUserAdminHandler(svc, nil),
		Admin:       handler.NewAdminHandler(nil, nil),
		Maintenance: handler.NewMaintenanceHandler(nil, nil),
	}, svc, nil)

	mounted := make(map[string]bool)
	for _, r := range e.Routes() {
		mounted[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"GET /v1/auth/me",
		"POST /v1/auth/reset-password",
		"GET /v1/tools",
		"GET /v1/tools/:name/access",
		"POST /v1/maintenance-requests",
		"GET /v1/maintenance-requests",
		"GET /v1/maintenance-requests/:id",
		"PATCH /v1/maintenance-requests/:id/status",
		"DELETE /v1/maintenance-requests/:id",
		"GET /v1/admin/users",
		"POST /v1/admin/users",
		"GET /v1/admin/users/:id",
		"PATCH /v1/admin/users/:id",
		"DELETE /v1/admin/users/:id",
		"GET /v1/admin/tools",
		"POST /v1/admin/tools",
		"PATCH /v1/admin/tools/:id",
		"GET /v1/admin/roles",
		"POST /v1/admin/roles",
	} {
		require.True(t, mounted[want], "route not mounted: %s", want)
	}
}
