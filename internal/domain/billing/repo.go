package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// SetStatus transitions the invoice from one of the expected statuses.
	// It reports ErrStatusConflict when the row was not in an expected
	// status.
	SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error)
}
