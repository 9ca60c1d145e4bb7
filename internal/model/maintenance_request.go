package model

import "time"

// Priority levels accepted for maintenance requests.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Lifecycle states of a maintenance request.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Warranty states recorded on a maintenance request.
const (
	WarrantyActive        = "active"
	WarrantyExpired       = "expired"
	WarrantyNotApplicable = "not_applicable"
)

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the accepted request states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidWarrantyStatus reports whether w is one of the accepted warranty states.
func ValidWarrantyStatus(w string) bool {
	switch w {
	case WarrantyActive, WarrantyExpired, WarrantyNotApplicable:
		return true
	}
	return false
}

// MaintenanceRequest mirrors the `maintenance_requests` table. A request
// is owned by its submitter; visibility rules (owner or a privileged
// role) are decided by the auth package, not here.
type MaintenanceRequest struct {
	ID          uint64 // maintenance_requests.id
	Title       string
	Description string
	Company     string
	Team        string
	Priority    string // one of the Priority* constants
	Status      string // one of the Status* constants

	EquipmentName string
	Location      string

	RequestedCompletionDate *time.Time
	LastMaintenanceDate     *time.Time
	MaintenanceCycleDays    *int

	WarrantyStatus     string // one of the Warranty* constants
	WarrantyExpiryDate *time.Time

	PartOrderList string
	Attachments   []string // stored as a JSON array of filenames

	SubmitterID   uint64
	CompletedAt   *time.Time
	CompletedByID *uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}
