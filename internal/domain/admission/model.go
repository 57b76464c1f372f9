// Package admission manages hospital beds and inpatient stays.
package admission

import (
	"time"

	"github.com/google/uuid"
)

// Bed statuses.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusMaintenance = "maintenance"
	StatusReserved    = "reserved"
)

// DefaultDailyRate applies when a bed has no rate configured.
const DefaultDailyRate = 500.0

// Bed maps to the beds table. The (room_number, bed_number) pair is unique.
type Bed struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RoomNumber   string     `db:"room_number" json:"room_number"`
	BedNumber    string     `db:"bed_number" json:"bed_number"`
	Ward         string     `db:"ward" json:"ward"`
	Status       string     `db:"status" json:"status"`
	DailyRate    float64    `db:"daily_rate" json:"daily_rate"`
	PatientID    *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	AssignedBy   *uuid.UUID `db:"assigned_by" json:"assigned_by,omitempty"`
	AdmittedAt   *time.Time `db:"admitted_at" json:"admitted_at,omitempty"`
	DischargedAt *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
