// Package search fans a free-text query out across the main entities.
package search

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/domain/identity"
	"github.com/medicore/hms/internal/domain/pharmacy"
	"github.com/medicore/hms/internal/domain/scheduling"
	"github.com/medicore/hms/internal/platform/auth"
)

// Queries shorter than this return empty result sets for every category.
const minQueryLen = 2

// Each category is capped at this many results.
const perCategoryLimit = 10

type UserSearcher interface {
	SearchByName(ctx context.Context, role auth.Role, q string, limit int) ([]*identity.User, error)
}

type MedicineSearcher interface {
	SearchText(ctx context.Context, q string, limit int) ([]*pharmacy.Medicine, error)
}

type AppointmentSearcher interface {
	SearchReason(ctx context.Context, q string, userID *uuid.UUID, limit int) ([]*scheduling.Appointment, error)
}

// Results holds one capped list per category. Categories the caller's role
// may not search stay empty.
type Results struct {
	Patients     []*identity.User          `json:"patients"`
	Doctors      []*identity.User          `json:"doctors"`
	Medicines    []*pharmacy.Medicine      `json:"medicines"`
	Appointments []*scheduling.Appointment `json:"appointments"`
}

func emptyResults() *Results {
	return &Results{
		Patients:     []*identity.User{},
		Doctors:      []*identity.User{},
		Medicines:    []*pharmacy.Medicine{},
		Appointments: []*scheduling.Appointment{},
	}
}

type Service struct {
	users        UserSearcher
	medicines    MedicineSearcher
	appointments AppointmentSearcher
}

func NewService(users UserSearcher, medicines MedicineSearcher, appointments AppointmentSearcher) *Service {
	return &Service{users: users, medicines: medicines, appointments: appointments}
}

// Search runs the query across every category the caller may see. Patients
// never get medicine results, and everyone but admins is limited to their
// own appointments.
func (s *Service) Search(ctx context.Context, callerID uuid.UUID, role auth.Role, q string) (*Results, error) {
	res := emptyResults()
	q = strings.TrimSpace(q)
	if len(q) < minQueryLen {
		return res, nil
	}

	patients, err := s.users.SearchByName(ctx, auth.RolePatient, q, perCategoryLimit)
	if err != nil {
		return nil, err
	}
	if patients != nil {
		res.Patients = patients
	}

	doctors, err := s.users.SearchByName(ctx, auth.RoleDoctor, q, perCategoryLimit)
	if err != nil {
		return nil, err
	}
	if doctors != nil {
		res.Doctors = doctors
	}

	if role != auth.RolePatient {
		medicines, err := s.medicines.SearchText(ctx, q, perCategoryLimit)
		if err != nil {
			return nil, err
		}
		if medicines != nil {
			res.Medicines = medicines
		}
	}

	var scope *uuid.UUID
	if role != auth.RoleAdmin {
		scope = &callerID
	}
	appointments, err := s.appointments.SearchReason(ctx, q, scope, perCategoryLimit)
	if err != nil {
		return nil, err
	}
	if appointments != nil {
		res.Appointments = appointments
	}

	return res, nil
}
