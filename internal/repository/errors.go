// Package repository implements the MySQL-backed stores for users,
// roles, tools and maintenance requests. Sentinel errors defined here
// let handlers translate failures into HTTP status codes without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when the requested record does not exist.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when an insert or update collides with
// the unique username index. Handlers translate it into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert or update collides with the
// unique email index. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrRoleExists is returned when a role insert collides with the unique
// role name index. Handlers translate it into HTTP 409.
var ErrRoleExists = errors.New("role already exists")
