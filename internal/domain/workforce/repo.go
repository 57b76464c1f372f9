package workforce

import (
	"context"

	"github.com/google/uuid"
)

// AttendanceRepository persists attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, a *Attendance) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*Attendance, error)
	// SetCheckOut closes the day on a record with no check-out yet. It
	// reports ErrAlreadyCheckedOut when the record is already closed.
	SetCheckOut(ctx context.Context, id uuid.UUID, a *Attendance) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Attendance, int, error)
	ListByDate(ctx context.Context, date string, limit, offset int) ([]*Attendance, int, error)
}

// LeaveRepository persists leave requests.
type LeaveRepository interface {
	Create(ctx context.Context, l *LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	// Decide settles a pending request. It reports ErrAlreadyDecided when
	// the request is no longer pending.
	Decide(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, comment *string) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LeaveRequest, int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*LeaveRequest, int, error)
}
