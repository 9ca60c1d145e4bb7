package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/forge-dashboard/internal/model"
)

// MaintenanceRepo persists maintenance requests. Attachments are stored
// as a JSON array of filenames in a TEXT column; file contents live in
// external storage.
type MaintenanceRepo struct{ DB *sql.DB }

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{DB: db} }

const maintenanceColumns = `id,title,description,company,team,priority,status,
equipment_name,location,requested_completion_date,last_maintenance_date,
maintenance_cycle_days,warranty_status,warranty_expiry_date,part_order_list,
attachments,submitter_id,completed_at,completed_by_id,created_at,updated_at`

// Create inserts a request and returns its id. Zero-value enum fields
// get their defaults (medium priority, pending status, warranty not
// applicable).
func (r *MaintenanceRepo) Create(ctx context.Context, m *model.MaintenanceRequest) (uint64, error) {
	if m.Priority == "" {
		m.Priority = model.PriorityMedium
	}
	if m.Status == "" {
		m.Status = model.StatusPending
	}
	if m.WarrantyStatus == "" {
		m.WarrantyStatus = model.WarrantyNotApplicable
	}
	attachments, err := marshalAttachments(m.Attachments)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO maintenance_requests
		 (title, description, company, team, priority, status,
		  equipment_name, location, requested_completion_date, last_maintenance_date,
		  maintenance_cycle_days, warranty_status, warranty_expiry_date,
		  part_order_list, attachments, submitter_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Title, m.Description, m.Company, m.Team, m.Priority, m.Status,
		m.EquipmentName, m.Location, m.RequestedCompletionDate, m.LastMaintenanceDate,
		m.MaintenanceCycleDays, m.WarrantyStatus, m.WarrantyExpiryDate,
		m.PartOrderList, attachments, m.SubmitterID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one request; ErrNotFound when it does not exist.
func (r *MaintenanceRepo) GetByID(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+maintenanceColumns+" FROM maintenance_requests WHERE id=? LIMIT 1", id)
	m, err := scanMaintenance(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// List returns all requests, newest first.
func (r *MaintenanceRepo) List(ctx context.Context) ([]model.MaintenanceRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+maintenanceColumns+" FROM maintenance_requests ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectMaintenance(rows)
}

// ListBySubmitter returns the requests submitted by one user, newest
// first.
func (r *MaintenanceRepo) ListBySubmitter(ctx context.Context, submitterID uint64) ([]model.MaintenanceRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+maintenanceColumns+" FROM maintenance_requests WHERE submitter_id=? ORDER BY created_at DESC",
		submitterID)
	if err != nil {
		return nil, err
	}
	return collectMaintenance(rows)
}

// UpdateStatus moves a request to a new state. Completing a request
// also records when and by whom.
func (r *MaintenanceRepo) UpdateStatus(ctx context.Context, id uint64, status string, actorID uint64) error {
	var res sql.Result
	var err error
	if status == model.StatusCompleted {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE maintenance_requests SET status=?, completed_at=NOW(), completed_by_id=? WHERE id=?",
			status, actorID, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE maintenance_requests SET status=? WHERE id=?", status, id)
	}
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

// Delete removes a request.
func (r *MaintenanceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM maintenance_requests WHERE id=?", id)
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

func collectMaintenance(rows *sql.Rows) ([]model.MaintenanceRequest, error) {
	defer rows.Close()
	var out []model.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanMaintenance(scan func(dest ...interface{}) error) (*model.MaintenanceRequest, error) {
	var (
		m           model.MaintenanceRequest
		attachments sql.NullString
		completedAt sql.NullTime
		completedBy sql.NullInt64
		reqDate     sql.NullTime
		lastDate    sql.NullTime
		warrantyEnd sql.NullTime
		cycleDays   sql.NullInt64
	)
	err := scan(&m.ID, &m.Title, &m.Description, &m.Company, &m.Team,
		&m.Priority, &m.Status, &m.EquipmentName, &m.Location,
		&reqDate, &lastDate, &cycleDays, &m.WarrantyStatus, &warrantyEnd,
		&m.PartOrderList, &attachments, &m.SubmitterID,
		&completedAt, &completedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reqDate.Valid {
		m.RequestedCompletionDate = timePtr(reqDate.Time)
	}
	if lastDate.Valid {
		m.LastMaintenanceDate = timePtr(lastDate.Time)
	}
	if cycleDays.Valid {
		days := int(cycleDays.Int64)
		m.MaintenanceCycleDays = &days
	}
	if warrantyEnd.Valid {
		m.WarrantyExpiryDate = timePtr(warrantyEnd.Time)
	}
	if completedAt.Valid {
		m.CompletedAt = timePtr(completedAt.Time)
	}
	if completedBy.Valid {
		by := uint64(completedBy.Int64)
		m.CompletedByID = &by
	}
	if attachments.Valid && attachments.String != "" {
		if err := json.Unmarshal([]byte(attachments.String), &m.Attachments); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func marshalAttachments(names []string) (sql.NullString, error) {
	if len(names) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(names)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func timePtr(t time.Time) *time.Time { return &t }
