package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

// UserRepo persists users and the user_roles / user_tools join tables.
// Every read returns the user with roles and tools resolved, so the
// auth layer can make decisions without further queries.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,full_name,password_hash,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsername fetches a user by normalized username, with roles and
// tools loaded. Returns (nil, nil) when no such user exists.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
	if err != nil || u == nil {
		return nil, err
	}
	if err := r.loadGrants(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindByID fetches a user by id, with roles and tools loaded. Returns
// (nil, nil) when no such user exists.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err != nil || u == nil {
		return nil, err
	}
	if err := r.loadGrants(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns all users with their role and tool sets.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName,
			&u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if err := r.loadGrants(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Create inserts a user and returns its id. Username and email are
// normalized to lowercase before the insert; unique-index collisions
// map to ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, fullName, passwordHash string) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash, is_active) VALUES (?,?,?,?,1)",
		username, email, fullName, passwordHash)
	if err != nil {
		return 0, mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UserUpdate is a partial update: nil fields are left untouched. Role
// and tool assignments are replaced wholesale when the slice is
// non-nil.
type UserUpdate struct {
	Email    *string
	FullName *string
	IsActive *bool
	RoleIDs  []uint64
	ToolIDs  []uint64
}

// Update applies a partial update inside a transaction so that the
// field changes and grant replacements land together.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if _, err := tx.ExecContext(ctx, "UPDATE users SET email=? WHERE id=?", email, id); err != nil {
			return mapDuplicate(err)
		}
	}
	if upd.FullName != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET full_name=? WHERE id=?", *upd.FullName, id); err != nil {
			return err
		}
	}
	if upd.IsActive != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", *upd.IsActive, id); err != nil {
			return err
		}
	}
	if upd.RoleIDs != nil {
		if err := replaceGrants(ctx, tx, "user_roles", "role_id", id, upd.RoleIDs); err != nil {
			return err
		}
	}
	if upd.ToolIDs != nil {
		if err := replaceGrants(ctx, tx, "user_tools", "tool_id", id, upd.ToolIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdatePassword stores a new password hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user and its grant rows.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_tools WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// loadGrants resolves the user's role and tool sets through the join
// tables.
func (r *UserRepo) loadGrants(ctx context.Context, u *model.User) error {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name, r.description
		   FROM roles r JOIN user_roles ur ON ur.role_id = r.id
		  WHERE ur.user_id = ? ORDER BY r.id`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return err
		}
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	toolRows, err := r.DB.QueryContext(ctx,
		`SELECT t.id, t.name, t.display_name, t.description, t.route, t.icon, t.is_active
		   FROM tools t JOIN user_tools ut ON ut.tool_id = t.id
		  WHERE ut.user_id = ? ORDER BY t.id`, u.ID)
	if err != nil {
		return err
	}
	defer toolRows.Close()
	for toolRows.Next() {
		var tool model.Tool
		if err := toolRows.Scan(&tool.ID, &tool.Name, &tool.DisplayName,
			&tool.Description, &tool.Route, &tool.Icon, &tool.IsActive); err != nil {
			return err
		}
		u.Tools = append(u.Tools, tool)
	}
	return toolRows.Err()
}

// replaceGrants swaps all join rows of one kind for the user.
func replaceGrants(ctx context.Context, tx *sql.Tx, table, column string, userID uint64, ids []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id=?", userID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (user_id, "+column+") VALUES (?,?)", userID, id); err != nil {
			return err
		}
	}
	return nil
}

// mapDuplicate converts MySQL duplicate-key errors (1062) into the
// matching sentinel based on the index named in the message.
func mapDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}
