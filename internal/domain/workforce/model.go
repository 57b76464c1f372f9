// Package workforce covers staff attendance tracking and leave requests.
package workforce

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format for attendance and leave dates.
const DateLayout = "2006-01-02"

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half_day"
)

// Check-ins at or after this local hour are marked late.
const lateHour = 10

// A checked-out day shorter than this many hours is downgraded to half_day.
const halfDayHours = 4.0

// Attendance maps to the attendance table. One row per (user, date).
type Attendance struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Date        string     `db:"date" json:"date"`
	CheckIn     time.Time  `db:"check_in" json:"check_in"`
	CheckOut    *time.Time `db:"check_out" json:"check_out,omitempty"`
	Status      string     `db:"status" json:"status"`
	HoursWorked *float64   `db:"hours_worked" json:"hours_worked,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Leave statuses.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// LeaveRequest maps to the leave_requests table.
type LeaveRequest struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	Type       string     `db:"type" json:"type"`
	FromDate   string     `db:"from_date" json:"from_date"`
	ToDate     string     `db:"to_date" json:"to_date"`
	Reason     string     `db:"reason" json:"reason"`
	Status     string     `db:"status" json:"status"`
	DecidedBy  *uuid.UUID `db:"decided_by" json:"decided_by,omitempty"`
	Comment    *string    `db:"comment" json:"comment,omitempty"`
	DecidedAt  *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
