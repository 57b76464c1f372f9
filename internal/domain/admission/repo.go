package admission

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BedRepository persists beds.
type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	// Assign marks an available bed occupied. It reports ErrBedUnavailable
	// when the bed is in any other status.
	Assign(ctx context.Context, id, patientID, assignedBy uuid.UUID, admittedAt time.Time) error
	// Discharge frees an occupied bed. It reports ErrBedNotOccupied when
	// the bed is not occupied.
	Discharge(ctx context.Context, id uuid.UUID, dischargedAt time.Time) error
	// SetStatus moves a bed between non-occupied states. It reports
	// ErrBedUnavailable when the bed is not in one of the from statuses.
	SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) error
	List(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error)
}
