package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

func role(name string) model.Role { return model.Role{Name: name} }

func tool(name string, active bool) model.Tool {
	return model.Tool{Name: name, IsActive: active}
}

func toolNames(tools []model.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}

func TestHasRoleExactMatch(t *testing.T) {
	u := &model.User{Roles: []model.Role{role("operator"), role("user")}}

	assert.True(t, HasRole(u, "operator"))
	assert.False(t, HasRole(u, "Operator")) // case-sensitive
	assert.False(t, HasRole(u, "superuser"))
}

func TestHasAnyRole(t *testing.T) {
	u := &model.User{Roles: []model.Role{role("maintenance")}}

	assert.True(t, HasAnyRole(u, MaintenanceViewers))
	assert.False(t, HasAnyRole(u, SuperuserOnly))
	assert.False(t, HasAnyRole(u, nil))
}

func TestEffectiveToolsSuperuserOverride(t *testing.T) {
	// Superuser has no explicit grants at all; the override still
	// respects the active flag.
	su := &model.User{ID: 1, Roles: []model.Role{role(RoleSuperuser)}}
	active := []model.Tool{tool("compare_tool", true), tool("aci_chat", false)}

	got := EffectiveTools(su, active)
	require.Equal(t, []string{"compare_tool"}, toolNames(got))
}

func TestEffectiveToolsRegularUserIntersection(t *testing.T) {
	u := &model.User{
		ID:    2,
		Roles: []model.Role{role("user"), role("operator")},
		Tools: []model.Tool{tool("compare_tool", true)},
	}
	active := []model.Tool{tool("compare_tool", true), tool("aci_chat", true)}

	got := EffectiveTools(u, active)
	require.Equal(t, []string{"compare_tool"}, toolNames(got))
}

func TestHasToolAccessScenario(t *testing.T) {
	alex := &model.User{
		ID:    3,
		Roles: []model.Role{role("user"), role("operator")},
		Tools: []model.Tool{tool("compare_tool", true)},
	}
	active := []model.Tool{tool("compare_tool", true), tool("aci_chat", true)}

	assert.True(t, HasToolAccess(alex, "compare_tool", active))
	assert.False(t, HasToolAccess(alex, "aci_chat", active))
}

func TestDeactivatingToolRevokesAccess(t *testing.T) {
	alex := &model.User{
		ID:    3,
		Roles: []model.Role{role("user")},
		Tools: []model.Tool{tool("compare_tool", true)},
	}

	active := []model.Tool{tool("compare_tool", true)}
	require.True(t, HasToolAccess(alex, "compare_tool", active))

	// Flipping is_active revokes access without touching the grant.
	deactivated := []model.Tool{tool("compare_tool", false)}
	require.False(t, HasToolAccess(alex, "compare_tool", deactivated))
}

func TestCanViewResource(t *testing.T) {
	owner := &model.User{ID: 10, Roles: []model.Role{role("user")}}
	maint := &model.User{ID: 11, Roles: []model.Role{role("maintenance")}}
	su := &model.User{ID: 12, Roles: []model.Role{role(RoleSuperuser)}}
	other := &model.User{ID: 13, Roles: []model.Role{role("user")}}

	assert.True(t, CanViewResource(owner, 10, MaintenanceViewers))
	assert.True(t, CanViewResource(maint, 10, MaintenanceViewers))
	assert.True(t, CanViewResource(su, 10, MaintenanceViewers))
	assert.False(t, CanViewResource(other, 10, MaintenanceViewers))

	// Different resources use different privileged sets: the
	// maintenance role cannot delete, only the superuser can.
	assert.False(t, CanViewResource(maint, 10, SuperuserOnly))
	assert.True(t, CanViewResource(su, 10, SuperuserOnly))
}

func TestCanSelfDeleteAlwaysFalseOnSelf(t *testing.T) {
	regular := &model.User{ID: 5, Roles: []model.Role{role("user")}}
	su := &model.User{ID: 6, Roles: []model.Role{role(RoleSuperuser)}}

	assert.False(t, CanSelfDelete(regular, 5))
	assert.False(t, CanSelfDelete(su, 6)) // superusers included
	assert.True(t, CanSelfDelete(su, 5))
}
