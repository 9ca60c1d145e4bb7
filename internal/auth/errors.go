// Package auth implements the credential, token and authorization core
// of the dashboard: bcrypt password hashing, HS256 token issuing and
// verification, the pure role/tool decision functions and the
// authentication service that ties them to the user store.
package auth

import (
	"errors"
	"strings"
)

// ErrInvalidCredentials is returned by Authenticate for every login
// failure: unknown username, deactivated account or password mismatch.
// The three causes are deliberately indistinguishable so that the API
// cannot be used to enumerate usernames.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, expired, malformed, or presented with the
// wrong type. Which check failed is never revealed to the caller.
var ErrInvalidToken = errors.New("invalid token")

// ErrInsufficientPrivilege is returned when an authenticated user fails
// a role or tool requirement. Handlers map it to HTTP 403.
var ErrInsufficientPrivilege = errors.New("insufficient privilege")

// ErrDependencyUnavailable wraps store failures so that handlers can
// map them to a 5xx instead of silently treating a database outage as
// bad credentials.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// WeakPasswordError carries the itemized policy violations for a
// rejected password. Unlike the other failures in this package it is
// deliberately detailed, to help legitimate users pick an acceptable
// password.
type WeakPasswordError struct {
	Issues []string
}

func (e *WeakPasswordError) Error() string {
	return "weak password: " + strings.Join(e.Issues, "; ")
}
