package pharmacy

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockMedicineRepo struct {
	medicines map[uuid.UUID]*Medicine
}

var _ MedicineRepository = (*mockMedicineRepo)(nil)

func newMockMedicineRepo() *mockMedicineRepo {
	return &mockMedicineRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (m *mockMedicineRepo) Create(_ context.Context, med *Medicine) error {
	med.ID = uuid.New()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockMedicineRepo) Update(_ context.Context, med *Medicine) error {
	if _, ok := m.medicines[med.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.medicines[med.ID] = med
	return nil
}

func (m *mockMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.medicines, id)
	return nil
}

func (m *mockMedicineRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error) {
	var items []*Medicine
	for _, med := range m.medicines {
		if name, ok := params["name"]; ok && !strings.Contains(strings.ToLower(med.Name), strings.ToLower(name)) {
			continue
		}
		if cat, ok := params["category"]; ok && med.Category != cat {
			continue
		}
		items = append(items, med)
	}
	return items, len(items), nil
}

func (m *mockMedicineRepo) SearchText(_ context.Context, q string, limit int) ([]*Medicine, error) {
	q = strings.ToLower(q)
	var items []*Medicine
	for _, med := range m.medicines {
		if strings.Contains(strings.ToLower(med.Name), q) || strings.Contains(strings.ToLower(med.Category), q) {
			items = append(items, med)
		}
	}
	return items, nil
}

func (m *mockMedicineRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	med, ok := m.medicines[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if med.Stock < qty {
		return ErrInsufficientStock
	}
	med.Stock -= qty
	return nil
}

func (m *mockMedicineRepo) LowStock(_ context.Context, threshold int) ([]*Medicine, error) {
	var items []*Medicine
	for _, med := range m.medicines {
		if med.Stock <= threshold {
			items = append(items, med)
		}
	}
	return items, nil
}

type mockPrescriptionRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

var _ PrescriptionRepository = (*mockPrescriptionRepo)(nil)

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func (m *mockPrescriptionRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.DoctorID == doctorID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func TestAddMedicineValidation(t *testing.T) {
	svc := NewService(newMockMedicineRepo(), newMockPrescriptionRepo())
	ctx := context.Background()

	cases := []Medicine{
		{Category: "tablet", Price: 1, Stock: 1},             // no name
		{Name: "X", Category: "tablet", Price: -1, Stock: 1}, // negative price
		{Name: "X", Category: "tablet", Price: 1, Stock: -1}, // negative stock
	}
	for i, m := range cases {
		if err := svc.AddMedicine(ctx, &m); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}

	ok := Medicine{Name: "Paracetamol", Category: "tablet", Price: 2.5, Stock: 100}
	if err := svc.AddMedicine(ctx, &ok); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
}

func TestDispenseDecrementsStock(t *testing.T) {
	repo := newMockMedicineRepo()
	svc := NewService(repo, newMockPrescriptionRepo())
	ctx := context.Background()

	m := Medicine{Name: "Ibuprofen", Category: "tablet", Price: 1, Stock: 10}
	if err := svc.AddMedicine(ctx, &m); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Dispense(ctx, m.ID, 4); err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if repo.medicines[m.ID].Stock != 6 {
		t.Errorf("expected stock 6, got %d", repo.medicines[m.ID].Stock)
	}
}

func TestDispenseInsufficientStockLeavesStockUnchanged(t *testing.T) {
	repo := newMockMedicineRepo()
	svc := NewService(repo, newMockPrescriptionRepo())
	ctx := context.Background()

	m := Medicine{Name: "Ibuprofen", Category: "tablet", Price: 1, Stock: 3}
	if err := svc.AddMedicine(ctx, &m); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Dispense(ctx, m.ID, 5); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if repo.medicines[m.ID].Stock != 3 {
		t.Errorf("stock changed after rejected dispense: %d", repo.medicines[m.ID].Stock)
	}
}

func TestDispenseRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(newMockMedicineRepo(), newMockPrescriptionRepo())

	for _, qty := range []int{0, -1} {
		if err := svc.Dispense(context.Background(), uuid.New(), qty); err == nil {
			t.Errorf("expected error for qty %d", qty)
		}
	}
}

func TestLowStock(t *testing.T) {
	repo := newMockMedicineRepo()
	svc := NewService(repo, newMockPrescriptionRepo())
	ctx := context.Background()

	low := Medicine{Name: "A", Category: "tablet", Price: 1, Stock: LowStockThreshold}
	high := Medicine{Name: "B", Category: "tablet", Price: 1, Stock: LowStockThreshold + 1}
	if err := svc.AddMedicine(ctx, &low); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddMedicine(ctx, &high); err != nil {
		t.Fatal(err)
	}

	items, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(items) != 1 || items[0].Name != "A" {
		t.Errorf("expected only A in low stock, got %v", items)
	}
}

func TestCreatePrescription(t *testing.T) {
	svc := NewService(newMockMedicineRepo(), newMockPrescriptionRepo())
	ctx := context.Background()
	doctorID := uuid.New()

	// No items.
	if err := svc.CreatePrescription(ctx, doctorID, &Prescription{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for empty prescription")
	}
	// Item missing dosage.
	err := svc.CreatePrescription(ctx, doctorID, &Prescription{
		PatientID: uuid.New(),
		Items:     []PrescriptionItem{{MedicineName: "Paracetamol"}},
	})
	if err == nil {
		t.Error("expected error for item without dosage")
	}

	p := Prescription{
		PatientID: uuid.New(),
		Items: []PrescriptionItem{
			{MedicineName: "Paracetamol", Dosage: "500mg", Frequency: "2x daily", Duration: "5 days"},
		},
	}
	if err := svc.CreatePrescription(ctx, doctorID, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.DoctorID != doctorID {
		t.Error("expected doctor id to be set from the caller")
	}
}
