package auth

import "github.com/iliyamo/forge-dashboard/internal/model"

// RoleSuperuser short-circuits every tool check: a superuser can use
// every active tool regardless of explicit grants.
const RoleSuperuser = "superuser"

// Common privileged role sets, parameterized per resource type. A
// maintenance request is visible to its owner or to these roles; only
// the owner or a superuser may delete one.
var (
	MaintenanceViewers = []string{RoleSuperuser, "maintenance"}
	SuperuserOnly      = []string{RoleSuperuser}
)

// The functions in this file are pure: they decide over the role and
// tool view already loaded on the user and touch no external state.

// HasRole reports whether user holds roleName. Exact, case-sensitive
// string match on role names.
func HasRole(user *model.User, roleName string) bool {
	return user.HasRole(roleName)
}

// HasAnyRole reports whether user holds at least one of roleNames. Used
// for composite checks such as maintenance-or-superuser.
func HasAnyRole(user *model.User, roleNames []string) bool {
	for _, name := range roleNames {
		if user.HasRole(name) {
			return true
		}
	}
	return false
}

// EffectiveTools derives the tool set the user can actually reach. A
// superuser gets every active tool; everyone else gets the intersection
// of their explicit grants with the active set. This is the single
// place the superuser override lives; call sites must not re-derive
// it.
func EffectiveTools(user *model.User, activeTools []model.Tool) []model.Tool {
	if user.HasRole(RoleSuperuser) {
		out := make([]model.Tool, 0, len(activeTools))
		for _, t := range activeTools {
			if t.IsActive {
				out = append(out, t)
			}
		}
		return out
	}
	active := make(map[string]model.Tool, len(activeTools))
	for _, t := range activeTools {
		if t.IsActive {
			active[t.Name] = t
		}
	}
	out := make([]model.Tool, 0, len(user.Tools))
	for _, granted := range user.Tools {
		if t, ok := active[granted.Name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// HasToolAccess reports whether toolName is in the user's effective
// tool set.
func HasToolAccess(user *model.User, toolName string, activeTools []model.Tool) bool {
	for _, t := range EffectiveTools(user, activeTools) {
		if t.Name == toolName {
			return true
		}
	}
	return false
}

// CanViewResource reports whether user may view a resource owned by
// resourceOwnerID: owners always can, otherwise one of the privileged
// roles is required. The privileged set differs per resource type, so
// callers pass it in rather than this package hard-coding it.
func CanViewResource(user *model.User, resourceOwnerID uint64, privilegedRoles []string) bool {
	if user.ID == resourceOwnerID {
		return true
	}
	return HasAnyRole(user, privilegedRoles)
}

// CanSelfDelete reports whether actor may delete the user identified by
// targetID. Self-deletion is categorically forbidden, superusers
// included, so an admin can never lock themselves out.
func CanSelfDelete(actor *model.User, targetID uint64) bool {
	return actor.ID != targetID
}
