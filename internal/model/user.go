package model

import "time"

// User represents a row in the `users` table together with the role and
// tool sets resolved through the `user_roles` and `user_tools` join
// tables. Repositories load Roles and Tools eagerly so that
// authorization checks can run over a fully materialized view without
// further database access.
//
// PasswordHash is opaque to every layer above the credential hasher and
// must never appear in logs or API responses.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username (unique, stored lowercase)
	Email        string    // users.email (unique, stored lowercase)
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash (bcrypt, never serialized)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at

	Roles []Role // resolved via user_roles
	Tools []Tool // resolved via user_tools (raw grants, not the effective set)
}

// HasRole reports whether the user holds the named role. Role names are
// compared exactly; there is no case folding.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Role is a named permission bucket (`roles` table). Roles carry no
// hierarchy; the only special case is the superuser override applied by
// the auth package.
type Role struct {
	ID          uint64 // roles.id
	Name        string // roles.name (unique key, e.g. superuser, manager, operator, maintenance)
	Description string // roles.description
}

// Tool is a gate-keyed capability the dashboard links to (`tools`
// table). An inactive tool is excluded from every user's effective tool
// list even when an explicit grant row exists.
type Tool struct {
	ID          uint64 // tools.id
	Name        string // tools.name (code key used in access checks)
	DisplayName string // tools.display_name
	Description string // tools.description
	Route       string // tools.route (destination path inside the dashboard)
	Icon        string // tools.icon
	IsActive    bool   // tools.is_active
}
