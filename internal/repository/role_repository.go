package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

// RoleRepo reads the role catalog. Roles are created administratively
// and rarely change, so the surface is intentionally small.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// List returns every role ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, description FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Create inserts a role and returns its id. A collision with the
// unique name index maps to ErrRoleExists.
func (r *RoleRepo) Create(ctx context.Context, name, description string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name, description) VALUES (?,?)", name, description)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrRoleExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
