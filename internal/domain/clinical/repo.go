package clinical

import (
	"context"

	"github.com/google/uuid"
)

// LabReportRepository persists lab reports.
type LabReportRepository interface {
	Create(ctx context.Context, r *LabReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabReport, error)
	// Start moves an ordered report to in_progress. It reports
	// ErrAlreadyCompleted when the report is not in the ordered status.
	Start(ctx context.Context, id uuid.UUID) error
	// Complete records the result on a report that is not yet completed.
	// It reports ErrAlreadyCompleted otherwise.
	Complete(ctx context.Context, id uuid.UUID, result string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabReport, int, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*LabReport, int, error)
}

// HistoryRepository persists medical history records.
type HistoryRepository interface {
	Create(ctx context.Context, h *HistoryRecord) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HistoryRecord, int, error)
}
