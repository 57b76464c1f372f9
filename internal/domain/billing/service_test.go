package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medicore/hms/internal/domain/pharmacy"
)

type mockInvoiceRepo struct {
	invoices   map[uuid.UUID]*Invoice
	failCreate bool
}

var _ InvoiceRepository = (*mockInvoiceRepo)(nil)

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[uuid.UUID]*Invoice)}
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	if m.failCreate {
		return errors.New("db down")
	}
	inv.ID = uuid.New()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *inv
	return &copied, nil
}

func (m *mockInvoiceRepo) SetStatus(_ context.Context, id uuid.UUID, from []string, to string) error {
	inv, ok := m.invoices[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, f := range from {
		if inv.Status == f {
			inv.Status = to
			return nil
		}
	}
	return ErrStatusConflict
}

func (m *mockInvoiceRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		if inv.PatientID == patientID {
			items = append(items, inv)
		}
	}
	return items, len(items), nil
}

func (m *mockInvoiceRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		items = append(items, inv)
	}
	return items, len(items), nil
}

type mockMedicineRepo struct {
	medicines map[uuid.UUID]*pharmacy.Medicine
}

var _ pharmacy.MedicineRepository = (*mockMedicineRepo)(nil)

func newMockMedicineRepo() *mockMedicineRepo {
	return &mockMedicineRepo{medicines: make(map[uuid.UUID]*pharmacy.Medicine)}
}

func (m *mockMedicineRepo) Create(_ context.Context, med *pharmacy.Medicine) error {
	med.ID = uuid.New()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*pharmacy.Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockMedicineRepo) Update(_ context.Context, med *pharmacy.Medicine) error { return nil }
func (m *mockMedicineRepo) Delete(_ context.Context, id uuid.UUID) error          { return nil }

func (m *mockMedicineRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*pharmacy.Medicine, int, error) {
	return nil, 0, nil
}

func (m *mockMedicineRepo) SearchText(_ context.Context, q string, limit int) ([]*pharmacy.Medicine, error) {
	return nil, nil
}

func (m *mockMedicineRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	med, ok := m.medicines[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if med.Stock < qty {
		return pharmacy.ErrInsufficientStock
	}
	med.Stock -= qty
	return nil
}

func (m *mockMedicineRepo) LowStock(_ context.Context, threshold int) ([]*pharmacy.Medicine, error) {
	return nil, nil
}

type mockNotifier struct {
	notified []uuid.UUID
}

func (m *mockNotifier) Notify(_ context.Context, userID uuid.UUID, typ, title, message string) {
	m.notified = append(m.notified, userID)
}

// passthroughTx simulates transactional semantics for the mocks: the
// medicine map is snapshotted and restored when fn fails.
func passthroughTx(meds *mockMedicineRepo) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		snapshot := make(map[uuid.UUID]int, len(meds.medicines))
		for id, med := range meds.medicines {
			snapshot[id] = med.Stock
		}
		if err := fn(ctx); err != nil {
			for id, stock := range snapshot {
				meds.medicines[id].Stock = stock
			}
			return err
		}
		return nil
	}
}

func newTestService() (*Service, *mockInvoiceRepo, *mockMedicineRepo, *mockNotifier) {
	invoices := newMockInvoiceRepo()
	meds := newMockMedicineRepo()
	notifier := &mockNotifier{}
	return NewService(invoices, meds, passthroughTx(meds), notifier), invoices, meds, notifier
}

func TestCreateInvoiceComputesTotalServerSide(t *testing.T) {
	svc, _, _, notifier := newTestService()
	patientID := uuid.New()

	inv, err := svc.CreateInvoice(context.Background(), uuid.New(), &InvoiceRequest{
		PatientID: patientID,
		Items: []InvoiceItem{
			{Description: "Consultation", Quantity: 1, UnitPrice: 300, Amount: 9999}, // client amount ignored
			{Description: "X-ray", Quantity: 2, UnitPrice: 150},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Total != 600 {
		t.Errorf("expected total 600, got %f", inv.Total)
	}
	if inv.Items[0].Amount != 300 {
		t.Errorf("expected recomputed amount 300, got %f", inv.Items[0].Amount)
	}
	if inv.Status != StatusUnpaid {
		t.Errorf("expected unpaid, got %s", inv.Status)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != patientID {
		t.Errorf("expected patient notification, got %v", notifier.notified)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	creator := uuid.New()

	cases := []InvoiceRequest{
		{Items: []InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: 1}}},                       // no patient
		{PatientID: uuid.New()},                                                                    // no items
		{PatientID: uuid.New(), Items: []InvoiceItem{{Quantity: 1, UnitPrice: 1}}},                 // no description
		{PatientID: uuid.New(), Items: []InvoiceItem{{Description: "x", Quantity: 0, UnitPrice: 1}}},  // zero qty
		{PatientID: uuid.New(), Items: []InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: -1}}}, // negative price
	}
	for i, req := range cases {
		if _, err := svc.CreateInvoice(ctx, creator, &req); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestMarkPaidTransitions(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, uuid.New(), &InvoiceRequest{
		PatientID: uuid.New(),
		Items:     []InvoiceItem{{Description: "Consultation", Quantity: 1, UnitPrice: 300}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid, err := svc.MarkPaid(ctx, inv.ID)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != StatusPaid {
		t.Errorf("expected paid, got %s", paid.Status)
	}

	// Paying again is an idempotent success.
	again, err := svc.MarkPaid(ctx, inv.ID)
	if err != nil {
		t.Fatalf("second pay: %v", err)
	}
	if again.Status != StatusPaid {
		t.Errorf("expected paid on repeat, got %s", again.Status)
	}

	// Cancelled invoices cannot be paid.
	repo.invoices[inv.ID].Status = StatusCancelled
	if _, err := svc.MarkPaid(ctx, inv.ID); err != ErrInvoiceCancelled {
		t.Errorf("expected ErrInvoiceCancelled, got %v", err)
	}
}

func TestCancelOnlyUnpaid(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, uuid.New(), &InvoiceRequest{
		PatientID: uuid.New(),
		Items:     []InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: 10}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.invoices[inv.ID].Status = StatusPaid
	if _, err := svc.Cancel(ctx, inv.ID); !errors.Is(err, ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict cancelling a paid invoice, got %v", err)
	}

	repo.invoices[inv.ID].Status = StatusUnpaid
	cancelled, err := svc.Cancel(ctx, inv.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestSellCreatesPaidInvoiceAndDecrementsStock(t *testing.T) {
	svc, invoices, meds, _ := newTestService()
	ctx := context.Background()

	med := pharmacy.Medicine{Name: "Paracetamol", Category: "tablet", Price: 2.5, Stock: 50}
	if err := meds.Create(ctx, &med); err != nil {
		t.Fatal(err)
	}

	inv, err := svc.Sell(ctx, uuid.New(), &SaleRequest{
		PatientID: uuid.New(),
		Items:     []SaleItem{{MedicineID: med.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if inv.Status != StatusPaid {
		t.Errorf("expected paid, got %s", inv.Status)
	}
	if inv.Total != 10 {
		t.Errorf("expected total 10, got %f", inv.Total)
	}
	if inv.Source != SourcePharmacy {
		t.Errorf("expected pharmacy source, got %s", inv.Source)
	}
	if meds.medicines[med.ID].Stock != 46 {
		t.Errorf("expected stock 46, got %d", meds.medicines[med.ID].Stock)
	}
	if len(invoices.invoices) != 1 {
		t.Errorf("expected 1 invoice, got %d", len(invoices.invoices))
	}
}

func TestSellInsufficientStockRollsBack(t *testing.T) {
	svc, invoices, meds, _ := newTestService()
	ctx := context.Background()

	a := pharmacy.Medicine{Name: "A", Category: "tablet", Price: 1, Stock: 10}
	b := pharmacy.Medicine{Name: "B", Category: "tablet", Price: 1, Stock: 1}
	if err := meds.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if err := meds.Create(ctx, &b); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Sell(ctx, uuid.New(), &SaleRequest{
		PatientID: uuid.New(),
		Items: []SaleItem{
			{MedicineID: a.ID, Quantity: 5},
			{MedicineID: b.ID, Quantity: 2}, // short by one
		},
	})
	if !errors.Is(err, pharmacy.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if meds.medicines[a.ID].Stock != 10 {
		t.Errorf("expected A stock restored to 10, got %d", meds.medicines[a.ID].Stock)
	}
	if len(invoices.invoices) != 0 {
		t.Errorf("expected no invoice after rollback, got %d", len(invoices.invoices))
	}
}

func TestSellValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	pharmacist := uuid.New()

	if _, err := svc.Sell(ctx, pharmacist, &SaleRequest{Items: []SaleItem{{MedicineID: uuid.New(), Quantity: 1}}}); err == nil {
		t.Error("expected error for missing patient")
	}
	if _, err := svc.Sell(ctx, pharmacist, &SaleRequest{PatientID: uuid.New()}); err == nil {
		t.Error("expected error for empty items")
	}
	if _, err := svc.Sell(ctx, pharmacist, &SaleRequest{
		PatientID: uuid.New(),
		Items:     []SaleItem{{MedicineID: uuid.New(), Quantity: 0}},
	}); err == nil {
		t.Error("expected error for zero quantity")
	}
}
