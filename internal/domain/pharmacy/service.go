package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// LowStockThreshold is the stock level at or below which a medicine appears
// in the low-stock report.
const LowStockThreshold = 10

type Service struct {
	medicines     MedicineRepository
	prescriptions PrescriptionRepository
}

func NewService(medicines MedicineRepository, prescriptions PrescriptionRepository) *Service {
	return &Service{medicines: medicines, prescriptions: prescriptions}
}

// -- Medicines --

func (s *Service) AddMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.medicines.Delete(ctx, id)
}

func (s *Service) SearchMedicines(ctx context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.Search(ctx, params, limit, offset)
}

// Dispense removes qty units of the medicine from stock. The decrement is a
// single conditional update, so concurrent dispenses cannot oversell.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return s.medicines.DecrementStock(ctx, id, qty)
}

func (s *Service) LowStock(ctx context.Context) ([]*Medicine, error) {
	return s.medicines.LowStock(ctx, LowStockThreshold)
}

// -- Prescriptions --

func (s *Service) CreatePrescription(ctx context.Context, doctorID uuid.UUID, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("at least one prescription item is required")
	}
	for i, item := range p.Items {
		if item.MedicineName == "" {
			return fmt.Errorf("item %d: medicine_name is required", i)
		}
		if item.Dosage == "" {
			return fmt.Errorf("item %d: dosage is required", i)
		}
	}
	p.DoctorID = doctorID
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByDoctor(ctx, doctorID, limit, offset)
}
