package workforce

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medicore/hms/internal/domain/inbox"
	"github.com/medicore/hms/internal/platform/db"
	"github.com/medicore/hms/internal/platform/websocket"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrNotCheckedIn      = errors.New("no check-in recorded today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrAlreadyDecided    = errors.New("leave request is already decided")
)

// Notifier is the slice of the notification channel this package uses.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, message string)
}

type Service struct {
	attendance AttendanceRepository
	leaves     LeaveRepository
	notifier   Notifier
	hub        websocket.Publisher
	now        func() time.Time
}

func NewService(attendance AttendanceRepository, leaves LeaveRepository, notifier Notifier, hub websocket.Publisher) *Service {
	return &Service{
		attendance: attendance,
		leaves:     leaves,
		notifier:   notifier,
		hub:        hub,
		now:        time.Now,
	}
}

// -- Attendance --

// CheckIn opens today's attendance record. A second check-in on the same
// day is rejected. Arrivals at or after 10:00 local time are marked late.
func (s *Service) CheckIn(ctx context.Context, userID uuid.UUID) (*Attendance, error) {
	now := s.now()
	date := now.Format(DateLayout)

	if _, err := s.attendance.GetByUserAndDate(ctx, userID, date); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	status := AttendancePresent
	if now.Hour() >= lateHour {
		status = AttendanceLate
	}

	rec := &Attendance{
		UserID:  userID,
		Date:    date,
		CheckIn: now,
		Status:  status,
	}
	if err := s.attendance.Create(ctx, rec); err != nil {
		// Two concurrent check-ins can both miss the lookup above; the
		// (user_id, date) constraint catches the loser.
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return rec, nil
}

// CheckOut closes today's record and computes hours worked. Days shorter
// than four hours are downgraded to half_day regardless of arrival time.
func (s *Service) CheckOut(ctx context.Context, userID uuid.UUID) (*Attendance, error) {
	now := s.now()
	rec, err := s.attendance.GetByUserAndDate(ctx, userID, now.Format(DateLayout))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}
	if rec.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}

	hours := math.Round(now.Sub(rec.CheckIn).Hours()*100) / 100
	rec.CheckOut = &now
	rec.HoursWorked = &hours
	if hours < halfDayHours {
		rec.Status = AttendanceHalfDay
	}

	if err := s.attendance.SetCheckOut(ctx, rec.ID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) MyAttendance(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Attendance, int, error) {
	return s.attendance.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) AttendanceByDate(ctx context.Context, date string, limit, offset int) ([]*Attendance, int, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	return s.attendance.ListByDate(ctx, date, limit, offset)
}

// -- Leave --

// ApplyLeave files a pending leave request.
func (s *Service) ApplyLeave(ctx context.Context, userID uuid.UUID, req *LeaveRequest) error {
	if req.Type == "" {
		return fmt.Errorf("type is required")
	}
	from, err := time.Parse(DateLayout, req.FromDate)
	if err != nil {
		return fmt.Errorf("invalid from_date %q, want YYYY-MM-DD", req.FromDate)
	}
	to, err := time.Parse(DateLayout, req.ToDate)
	if err != nil {
		return fmt.Errorf("invalid to_date %q, want YYYY-MM-DD", req.ToDate)
	}
	if to.Before(from) {
		return fmt.Errorf("to_date cannot be before from_date")
	}
	req.UserID = userID
	req.Status = LeavePending
	return s.leaves.Create(ctx, req)
}

// DecideLeave approves or rejects a pending request, notifies the requester
// and pushes a leave_updated event to their connections.
func (s *Service) DecideLeave(ctx context.Context, decidedBy, id uuid.UUID, status string, comment *string) (*LeaveRequest, error) {
	if status != LeaveApproved && status != LeaveRejected {
		return nil, fmt.Errorf("status must be %s or %s", LeaveApproved, LeaveRejected)
	}
	req, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.leaves.Decide(ctx, id, status, decidedBy, comment); err != nil {
		return nil, err
	}
	req.Status = status
	req.DecidedBy = &decidedBy
	req.Comment = comment

	s.notifier.Notify(ctx, req.UserID, inbox.TypeLeave,
		"Leave request "+status,
		fmt.Sprintf("Your leave from %s to %s has been %s", req.FromDate, req.ToDate, status))
	s.hub.EmitToUser(ctx, req.UserID, websocket.NewEvent(websocket.EventLeaveUpdated, req))

	return req, nil
}

func (s *Service) MyLeaves(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LeaveRequest, int, error) {
	return s.leaves.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListLeaves(ctx context.Context, status string, limit, offset int) ([]*LeaveRequest, int, error) {
	return s.leaves.List(ctx, status, limit, offset)
}
