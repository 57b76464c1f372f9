// Package pharmacy manages the medicine inventory and the prescriptions
// doctors write against it.
package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicines table.
type Medicine struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Category     string     `db:"category" json:"category"`
	Manufacturer *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	Price        float64    `db:"price" json:"price"`
	Stock        int        `db:"stock" json:"stock"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PrescriptionItem is one line of a prescription. Items are stored as a
// jsonb array on the prescription row.
type PrescriptionItem struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
}

// Prescription maps to the prescriptions table.
type Prescription struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	PatientID     uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Items         []PrescriptionItem `db:"items" json:"items"`
	Notes         *string            `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}
