package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/domain/billing"
)

type mockBedRepo struct {
	beds map[uuid.UUID]*Bed
}

func newMockBedRepo() *mockBedRepo {
	return &mockBedRepo{beds: make(map[uuid.UUID]*Bed)}
}

func (m *mockBedRepo) Create(_ context.Context, b *Bed) error {
	b.ID = uuid.New()
	m.beds[b.ID] = b
	return nil
}

func (m *mockBedRepo) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	b, ok := m.beds[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (m *mockBedRepo) Assign(_ context.Context, id, patientID, assignedBy uuid.UUID, admittedAt time.Time) error {
	b, ok := m.beds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if b.Status != StatusAvailable {
		return ErrBedUnavailable
	}
	b.Status = StatusOccupied
	b.PatientID = &patientID
	b.AssignedBy = &assignedBy
	b.AdmittedAt = &admittedAt
	b.DischargedAt = nil
	return nil
}

func (m *mockBedRepo) Discharge(_ context.Context, id uuid.UUID, dischargedAt time.Time) error {
	b, ok := m.beds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if b.Status != StatusOccupied {
		return ErrBedNotOccupied
	}
	b.Status = StatusAvailable
	b.PatientID = nil
	b.AssignedBy = nil
	b.AdmittedAt = nil
	b.DischargedAt = &dischargedAt
	return nil
}

func (m *mockBedRepo) SetStatus(_ context.Context, id uuid.UUID, from []string, to string) error {
	b, ok := m.beds[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, f := range from {
		if b.Status == f {
			b.Status = to
			return nil
		}
	}
	return ErrBedUnavailable
}

func (m *mockBedRepo) List(_ context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	var items []*Bed
	for _, b := range m.beds {
		if status == "" || b.Status == status {
			items = append(items, b)
		}
	}
	return items, len(items), nil
}

type mockInvoicer struct {
	requests []*billing.InvoiceRequest
	err      error
}

func (m *mockInvoicer) CreateInvoice(_ context.Context, _ uuid.UUID, req *billing.InvoiceRequest) (*billing.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requests = append(m.requests, req)
	return &billing.Invoice{ID: uuid.New(), PatientID: req.PatientID}, nil
}

func newTestService(repo *mockBedRepo, inv *mockInvoicer) *Service {
	return NewService(repo, inv, zerolog.Nop())
}

func occupiedBed(repo *mockBedRepo, admittedAt time.Time, rate float64) *Bed {
	patientID := uuid.New()
	assignedBy := uuid.New()
	b := &Bed{
		ID:         uuid.New(),
		RoomNumber: "101",
		BedNumber:  "A",
		Ward:       "general",
		Status:     StatusOccupied,
		DailyRate:  rate,
		PatientID:  &patientID,
		AssignedBy: &assignedBy,
		AdmittedAt: &admittedAt,
	}
	repo.beds[b.ID] = b
	return b
}

func TestAssignBed(t *testing.T) {
	repo := newMockBedRepo()
	svc := newTestService(repo, &mockInvoicer{})
	ctx := context.Background()

	bed := &Bed{RoomNumber: "101", BedNumber: "A"}
	if err := svc.AddBed(ctx, bed); err != nil {
		t.Fatalf("add bed: %v", err)
	}
	if bed.Status != StatusAvailable {
		t.Errorf("expected available, got %s", bed.Status)
	}

	patientID := uuid.New()
	got, err := svc.AssignBed(ctx, uuid.New(), bed.ID, patientID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != StatusOccupied || got.PatientID == nil || *got.PatientID != patientID {
		t.Errorf("unexpected bed after assign: %+v", got)
	}
	if got.AdmittedAt == nil {
		t.Error("expected admitted_at to be set")
	}

	// An occupied bed cannot be assigned again.
	if _, err := svc.AssignBed(ctx, uuid.New(), bed.ID, uuid.New()); !errors.Is(err, ErrBedUnavailable) {
		t.Errorf("expected ErrBedUnavailable, got %v", err)
	}
}

func TestAssignBedRequiresPatient(t *testing.T) {
	svc := newTestService(newMockBedRepo(), &mockInvoicer{})
	if _, err := svc.AssignBed(context.Background(), uuid.New(), uuid.New(), uuid.Nil); err == nil {
		t.Error("expected error for missing patient")
	}
}

func TestDaysStayed(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		out  time.Time
		want int
	}{
		{"under a day bills one", base.Add(2 * time.Hour), 1},
		{"exactly two days", base.Add(48 * time.Hour), 2},
		{"a second over two days bills three", base.Add(48*time.Hour + time.Second), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := daysStayed(base, tc.out); got != tc.want {
				t.Errorf("daysStayed = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDischargeInvoicesStay(t *testing.T) {
	repo := newMockBedRepo()
	invoicer := &mockInvoicer{}
	svc := newTestService(repo, invoicer)
	ctx := context.Background()

	admittedAt := time.Now().UTC().Add(-50 * time.Hour)
	bed := occupiedBed(repo, admittedAt, 750)
	patientID := *bed.PatientID

	got, err := svc.Discharge(ctx, uuid.New(), bed.ID)
	if err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if got.Status != StatusAvailable || got.PatientID != nil || got.AdmittedAt != nil {
		t.Errorf("unexpected bed after discharge: %+v", got)
	}
	if got.DischargedAt == nil {
		t.Error("expected discharged_at to be set")
	}

	if len(invoicer.requests) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(invoicer.requests))
	}
	req := invoicer.requests[0]
	if req.PatientID != patientID {
		t.Error("invoice should go to the admitted patient")
	}
	if req.Source != billing.SourceBed {
		t.Errorf("expected admission source, got %s", req.Source)
	}
	if len(req.Items) != 2 {
		t.Fatalf("expected charge line plus breakdown, got %d items", len(req.Items))
	}
	// 50 hours rounds up to 3 billed days.
	if req.Items[0].Quantity != 3 || req.Items[0].UnitPrice != 750 {
		t.Errorf("unexpected charge line: %+v", req.Items[0])
	}
	if req.Items[1].UnitPrice != 0 {
		t.Errorf("breakdown line must be zero-cost: %+v", req.Items[1])
	}
}

func TestDischargeDefaultsDailyRate(t *testing.T) {
	repo := newMockBedRepo()
	invoicer := &mockInvoicer{}
	svc := newTestService(repo, invoicer)

	bed := occupiedBed(repo, time.Now().UTC().Add(-time.Hour), 0)
	if _, err := svc.Discharge(context.Background(), uuid.New(), bed.ID); err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if got := invoicer.requests[0].Items[0].UnitPrice; got != DefaultDailyRate {
		t.Errorf("expected default rate %v, got %v", DefaultDailyRate, got)
	}
}

func TestDischargeSucceedsWhenInvoicingFails(t *testing.T) {
	repo := newMockBedRepo()
	invoicer := &mockInvoicer{err: errors.New("billing down")}
	svc := newTestService(repo, invoicer)

	bed := occupiedBed(repo, time.Now().UTC().Add(-time.Hour), 500)
	got, err := svc.Discharge(context.Background(), uuid.New(), bed.ID)
	if err != nil {
		t.Fatalf("discharge should not fail on invoicing error: %v", err)
	}
	if got.Status != StatusAvailable {
		t.Errorf("expected bed freed, got %s", got.Status)
	}
}

func TestDischargeRequiresOccupiedBed(t *testing.T) {
	repo := newMockBedRepo()
	svc := newTestService(repo, &mockInvoicer{})
	ctx := context.Background()

	bed := &Bed{RoomNumber: "102", BedNumber: "B"}
	if err := svc.AddBed(ctx, bed); err != nil {
		t.Fatalf("add bed: %v", err)
	}
	if _, err := svc.Discharge(ctx, uuid.New(), bed.ID); !errors.Is(err, ErrBedNotOccupied) {
		t.Errorf("expected ErrBedNotOccupied, got %v", err)
	}
}

func TestSetBedStatus(t *testing.T) {
	repo := newMockBedRepo()
	svc := newTestService(repo, &mockInvoicer{})
	ctx := context.Background()

	bed := &Bed{RoomNumber: "103", BedNumber: "C"}
	if err := svc.AddBed(ctx, bed); err != nil {
		t.Fatalf("add bed: %v", err)
	}

	got, err := svc.SetBedStatus(ctx, bed.ID, StatusMaintenance)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.Status != StatusMaintenance {
		t.Errorf("expected maintenance, got %s", got.Status)
	}

	if _, err := svc.SetBedStatus(ctx, bed.ID, "broken"); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := svc.SetBedStatus(ctx, bed.ID, StatusOccupied); err == nil {
		t.Error("occupied must not be reachable via status change")
	}

	// Occupied beds only leave via discharge.
	occupied := occupiedBed(repo, time.Now().UTC(), 500)
	if _, err := svc.SetBedStatus(ctx, occupied.ID, StatusMaintenance); !errors.Is(err, ErrBedUnavailable) {
		t.Errorf("expected ErrBedUnavailable, got %v", err)
	}
}
