package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateStatus transitions the appointment from one of the expected
	// statuses to the new one. It reports ErrStatusConflict when the row
	// was not in an expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []string, to string) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
	// SearchReason matches q against the reason text. When userID is set,
	// only appointments where that user is the patient or the doctor match.
	SearchReason(ctx context.Context, q string, userID *uuid.UUID, limit int) ([]*Appointment, error)
}

// ReviewRepository persists appointment reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Review, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Review, int, error)
	AverageRating(ctx context.Context, doctorID uuid.UUID) (float64, int, error)
}
