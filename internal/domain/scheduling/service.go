package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medicore/hms/internal/domain/inbox"
	"github.com/medicore/hms/internal/platform/auth"
)

var (
	ErrStatusConflict  = errors.New("appointment is not in a status that allows this transition")
	ErrForbidden       = errors.New("not allowed to modify this appointment")
	ErrNotCompleted    = errors.New("appointment is not completed")
	ErrAlreadyReviewed = errors.New("appointment has already been reviewed")
)

// Notifier is the slice of the notification channel this package uses.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, message string)
}

// validTransitions maps a target status to the statuses it may come from.
var validTransitions = map[string][]string{
	StatusConfirmed: {StatusPending},
	StatusCancelled: {StatusPending, StatusConfirmed},
	StatusCompleted: {StatusConfirmed},
}

type Service struct {
	appointments AppointmentRepository
	reviews      ReviewRepository
	notifier     Notifier
}

func NewService(appointments AppointmentRepository, reviews ReviewRepository, notifier Notifier) *Service {
	return &Service{appointments: appointments, reviews: reviews, notifier: notifier}
}

// -- Appointments --

// Book creates a pending appointment and notifies the doctor.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *BookRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Reason:    req.Reason,
		Status:    StatusPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, a.DoctorID, inbox.TypeAppointment,
		"New appointment request",
		fmt.Sprintf("A patient requested an appointment on %s", a.Date.Format("2006-01-02")))

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateStatus transitions an appointment. Patients may only cancel their own
// appointments; doctors act on their own schedule; receptionists and admins
// act on any.
func (s *Service) UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole auth.Role, id uuid.UUID, newStatus string) (*Appointment, error) {
	from, ok := validTransitions[newStatus]
	if !ok {
		return nil, fmt.Errorf("invalid target status: %s", newStatus)
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actorRole {
	case auth.RolePatient:
		if a.PatientID != actorID || newStatus != StatusCancelled {
			return nil, ErrForbidden
		}
	case auth.RoleDoctor:
		if a.DoctorID != actorID {
			return nil, ErrForbidden
		}
	case auth.RoleReceptionist, auth.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	if err := s.appointments.UpdateStatus(ctx, id, from, newStatus); err != nil {
		return nil, err
	}
	a.Status = newStatus

	s.notifier.Notify(ctx, a.PatientID, inbox.TypeAppointment,
		"Appointment "+newStatus,
		fmt.Sprintf("Your appointment on %s is now %s", a.Date.Format("2006-01-02"), newStatus))

	return a, nil
}

// AddNotes records the doctor's consultation notes.
func (s *Service) AddNotes(ctx context.Context, doctorID, id uuid.UUID, notes string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	if err := s.appointments.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	a.Notes = &notes
	return a, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.Search(ctx, params, limit, offset)
}

// -- Reviews --

// CreateReview records a patient's review of their own completed appointment.
func (s *Service) CreateReview(ctx context.Context, patientID uuid.UUID, req *ReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	a, err := s.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, ErrForbidden
	}
	if a.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	// Only a definite miss means the appointment is unreviewed; a lookup
	// failure must not be mistaken for one.
	if _, err := s.reviews.GetByAppointment(ctx, req.AppointmentID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rv := &Review{
		AppointmentID: req.AppointmentID,
		PatientID:     patientID,
		DoctorID:      a.DoctorID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListDoctorReviews(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	return s.reviews.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) DoctorRating(ctx context.Context, doctorID uuid.UUID) (float64, int, error) {
	return s.reviews.AverageRating(ctx, doctorID)
}
