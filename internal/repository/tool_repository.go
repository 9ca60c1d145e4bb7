package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

// ToolRepo persists the tool registry. ListActiveTools feeds the
// effective-tools derivation in the auth package.
type ToolRepo struct{ DB *sql.DB }

func NewToolRepo(db *sql.DB) *ToolRepo { return &ToolRepo{DB: db} }

const toolColumns = "id,name,display_name,description,route,icon,is_active"

func scanTools(rows *sql.Rows) ([]model.Tool, error) {
	defer rows.Close()
	var tools []model.Tool
	for rows.Next() {
		var t model.Tool
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName, &t.Description,
			&t.Route, &t.Icon, &t.IsActive); err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// ListActiveTools returns every tool with is_active set.
func (r *ToolRepo) ListActiveTools(ctx context.Context) ([]model.Tool, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE is_active=1 ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanTools(rows)
}

// List returns every tool, active or not. Used by the admin surface.
func (r *ToolRepo) List(ctx context.Context) ([]model.Tool, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM tools ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanTools(rows)
}

// GetByID fetches one tool; ErrNotFound when it does not exist.
func (r *ToolRepo) GetByID(ctx context.Context, id uint64) (model.Tool, error) {
	var t model.Tool
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+toolColumns+" FROM tools WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.DisplayName, &t.Description, &t.Route, &t.Icon, &t.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tool{}, ErrNotFound
	}
	return t, err
}

// Create inserts a tool and returns its id.
func (r *ToolRepo) Create(ctx context.Context, t model.Tool) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tools (name, display_name, description, route, icon, is_active) VALUES (?,?,?,?,?,?)",
		strings.TrimSpace(t.Name), t.DisplayName, t.Description, t.Route, t.Icon, t.IsActive)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ToolUpdate is a partial update; nil fields are left untouched.
type ToolUpdate struct {
	DisplayName *string
	Description *string
	Route       *string
	Icon        *string
	IsActive    *bool
}

// Update applies a partial update to a tool. Deactivating a tool here
// is enough to remove it from every user's effective tool list; grant
// rows are never touched.
func (r *ToolRepo) Update(ctx context.Context, id uint64, upd ToolUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.DisplayName != nil {
		sets = append(sets, "display_name=?")
		args = append(args, *upd.DisplayName)
	}
	if upd.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.Route != nil {
		sets = append(sets, "route=?")
		args = append(args, *upd.Route)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon=?")
		args = append(args, *upd.Icon)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tools SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
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
