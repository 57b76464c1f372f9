package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// MedicineRepository persists the medicine inventory.
type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error)
	// SearchText matches q against name and category.
	SearchText(ctx context.Context, q string, limit int) ([]*Medicine, error)
	// DecrementStock atomically reduces stock by qty, refusing to go
	// negative. It reports ErrInsufficientStock when stock is short.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	LowStock(ctx context.Context, threshold int) ([]*Medicine, error)
}

// PrescriptionRepository persists prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}
