package search

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/domain/identity"
	"github.com/medicore/hms/internal/domain/pharmacy"
	"github.com/medicore/hms/internal/domain/scheduling"
	"github.com/medicore/hms/internal/platform/auth"
)

type mockUserSearcher struct {
	users map[auth.Role][]*identity.User
}

func (m *mockUserSearcher) SearchByName(_ context.Context, role auth.Role, q string, limit int) ([]*identity.User, error) {
	return m.users[role], nil
}

type mockMedicineSearcher struct {
	medicines []*pharmacy.Medicine
	called    bool
}

func (m *mockMedicineSearcher) SearchText(_ context.Context, q string, limit int) ([]*pharmacy.Medicine, error) {
	m.called = true
	return m.medicines, nil
}

type mockAppointmentSearcher struct {
	appointments []*scheduling.Appointment
	lastScope    *uuid.UUID
}

func (m *mockAppointmentSearcher) SearchReason(_ context.Context, q string, userID *uuid.UUID, limit int) ([]*scheduling.Appointment, error) {
	m.lastScope = userID
	return m.appointments, nil
}

func newTestService() (*Service, *mockMedicineSearcher, *mockAppointmentSearcher) {
	users := &mockUserSearcher{users: map[auth.Role][]*identity.User{
		auth.RolePatient: {{ID: uuid.New(), Name: "Ann Ames"}},
		auth.RoleDoctor:  {{ID: uuid.New(), Name: "Dr. Amber"}},
	}}
	medicines := &mockMedicineSearcher{medicines: []*pharmacy.Medicine{{ID: uuid.New(), Name: "Amoxicillin"}}}
	appointments := &mockAppointmentSearcher{appointments: []*scheduling.Appointment{{ID: uuid.New(), Reason: "amnesia"}}}
	return NewService(users, medicines, appointments), medicines, appointments
}

func TestSearchShortQueryReturnsEmptySets(t *testing.T) {
	svc, medicines, _ := newTestService()

	for _, q := range []string{"", "a", " a "} {
		res, err := svc.Search(context.Background(), uuid.New(), auth.RoleAdmin, q)
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if len(res.Patients) != 0 || len(res.Doctors) != 0 || len(res.Medicines) != 0 || len(res.Appointments) != 0 {
			t.Errorf("query %q should return empty sets, got %+v", q, res)
		}
		if res.Patients == nil || res.Medicines == nil {
			t.Errorf("query %q should return empty slices, not nil", q)
		}
	}
	if medicines.called {
		t.Error("short queries must not hit the repositories")
	}
}

func TestSearchFansOut(t *testing.T) {
	svc, _, _ := newTestService()

	res, err := svc.Search(context.Background(), uuid.New(), auth.RoleAdmin, "am")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Patients) != 1 || len(res.Doctors) != 1 || len(res.Medicines) != 1 || len(res.Appointments) != 1 {
		t.Errorf("expected one hit per category, got %+v", res)
	}
}

func TestSearchPatientsGetNoMedicines(t *testing.T) {
	svc, medicines, _ := newTestService()

	res, err := svc.Search(context.Background(), uuid.New(), auth.RolePatient, "am")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Medicines) != 0 {
		t.Errorf("patients must not see medicine results, got %d", len(res.Medicines))
	}
	if medicines.called {
		t.Error("medicine search must not run for patients")
	}
}

func TestSearchAppointmentScope(t *testing.T) {
	svc, _, appointments := newTestService()
	callerID := uuid.New()

	if _, err := svc.Search(context.Background(), callerID, auth.RoleDoctor, "am"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if appointments.lastScope == nil || *appointments.lastScope != callerID {
		t.Errorf("non-admin appointment search must be scoped to the caller, got %v", appointments.lastScope)
	}

	if _, err := svc.Search(context.Background(), callerID, auth.RoleAdmin, "am"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if appointments.lastScope != nil {
		t.Error("admin appointment search must be unscoped")
	}
}
