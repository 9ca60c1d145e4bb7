package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

// UserStore is the user-record collaborator consumed by the Service.
// Implementations must return users with Roles and Tools eagerly
// loaded. A lookup miss is (nil, nil); a non-nil error means the store
// itself failed and is surfaced as ErrDependencyUnavailable.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// ToolRegistry supplies the active tool set against which effective
// tool lists are derived.
type ToolRegistry interface {
	ListActiveTools(ctx context.Context) ([]model.Tool, error)
}

// Service verifies credentials, mints token pairs and resolves tokens
// back to live user records. It holds no mutable state; every method is
// safe for concurrent use.
type Service struct {
	users  UserStore
	hasher *Hasher
	codec  *Codec
	policy PasswordPolicy
}

// NewService wires the authentication service from its collaborators.
func NewService(users UserStore, hasher *Hasher, codec *Codec, policy PasswordPolicy) *Service {
	return &Service{users: users, hasher: hasher, codec: codec, policy: policy}
}

// Authenticate checks username/password and returns the matching active
// user. Unknown username, wrong password and deactivated account all
// fail with the same ErrInvalidCredentials; only a store outage is
// reported differently.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if u == nil || !u.IsActive || !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueSession mints an access/refresh pair with the user's username as
// subject.
func (s *Service) IssueSession(u *model.User) (TokenPair, error) {
	return s.codec.IssuePair(u.Username)
}

// Resolve verifies a token of the expected type and re-fetches the user
// it names. A user that has been deleted or deactivated since the token
// was issued fails with ErrInvalidToken, so outstanding tokens stop
// working before they expire.
func (s *Service) Resolve(ctx context.Context, token string, expected TokenType) (*model.User, error) {
	subject, err := s.codec.Verify(token, expected)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if u == nil || !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.User, TokenPair, error) {
	u, err := s.Resolve(ctx, refreshToken, TokenRefresh)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueSession(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// ResetPassword applies the strength policy, hashes the new password
// and persists it for the named user. A policy violation returns a
// *WeakPasswordError with itemized reasons; an unknown username returns
// ErrInvalidCredentials.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) error {
	if issues := s.policy.Issues(newPassword); len(issues) > 0 {
		return &WeakPasswordError{Issues: issues}
	}
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if u == nil {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

// Policy exposes the configured password policy so that admin user
// creation applies the same rules as self-service reset.
func (s *Service) Policy() PasswordPolicy { return s.policy }

// Codec exposes the token codec, letting handlers report configured
// TTLs alongside issued tokens.
func (s *Service) Codec() *Codec { return s.codec }

// Hasher exposes the configured credential hasher for admin-driven user
// creation.
func (s *Service) Hasher() *Hasher { return s.hasher }
