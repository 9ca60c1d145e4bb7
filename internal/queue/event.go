// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into notification
// log entries.
package queue

// MaintenanceSubmittedEvent is published when a maintenance request is
// created. It carries enough information for downstream consumers to
// notify superusers without querying the primary database.
type MaintenanceSubmittedEvent struct {
	RequestID       uint64   `json:"request_id"`
	Title           string   `json:"title"`
	Priority        string   `json:"priority"`
	EquipmentName   string   `json:"equipment_name,omitempty"`
	Location        string   `json:"location,omitempty"`
	SubmitterID     uint64   `json:"submitter_id"`
	SubmitterName   string   `json:"submitter_name"`
	SubmitterEmail  string   `json:"submitter_email"`
	NotifyEmails    []string `json:"notify_emails"`
	SubmittedAt     string   `json:"submitted_at"`
}
