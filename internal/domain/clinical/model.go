// Package clinical covers lab reports and patient medical history records.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Lab report statuses.
const (
	StatusOrdered    = "ordered"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Medical history record types.
const (
	HistoryCondition  = "condition"
	HistoryAllergy    = "allergy"
	HistorySurgery    = "surgery"
	HistoryMedication = "medication"
	HistoryOther      = "other"
)

var historyTypes = map[string]bool{
	HistoryCondition:  true,
	HistoryAllergy:    true,
	HistorySurgery:    true,
	HistoryMedication: true,
	HistoryOther:      true,
}

// LabReport maps to the lab_reports table.
type LabReport struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	OrderedBy   uuid.UUID  `db:"ordered_by" json:"ordered_by"`
	TestName    string     `db:"test_name" json:"test_name"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Status      string     `db:"status" json:"status"`
	Result      *string    `db:"result" json:"result,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// HistoryRecord maps to the medical_history table.
type HistoryRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Severity    *string   `db:"severity" json:"severity,omitempty"`
	Active      bool      `db:"active" json:"active"`
	RecordedBy  uuid.UUID `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
