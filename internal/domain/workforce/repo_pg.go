package workforce

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medicore/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Attendance Repository ===========

type attendanceRepoPG struct{ pool *pgxpool.Pool }

func NewAttendanceRepoPG(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepoPG{pool: pool}
}

func (r *attendanceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const attendanceCols = `id, user_id, date, check_in, check_out, status, hours_worked, created_at`

func (r *attendanceRepoPG) scanAttendance(row pgx.Row) (*Attendance, error) {
	var a Attendance
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status,
		&a.HoursWorked, &a.CreatedAt)
	return &a, err
}

func (r *attendanceRepoPG) Create(ctx context.Context, a *Attendance) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO attendance (id, user_id, date, check_in, status)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.UserID, a.Date, a.CheckIn, a.Status)
	return err
}

func (r *attendanceRepoPG) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*Attendance, error) {
	return r.scanAttendance(r.conn(ctx).QueryRow(ctx,
		`SELECT `+attendanceCols+` FROM attendance WHERE user_id = $1 AND date = $2`, userID, date))
}

func (r *attendanceRepoPG) SetCheckOut(ctx context.Context, id uuid.UUID, a *Attendance) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE attendance SET check_out = $2, hours_worked = $3, status = $4
		WHERE id = $1 AND check_out IS NULL`,
		id, a.CheckOut, a.HoursWorked, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

func (r *attendanceRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Attendance, int, error) {
	return r.list(ctx, `user_id = $1`, userID, limit, offset)
}

func (r *attendanceRepoPG) ListByDate(ctx context.Context, date string, limit, offset int) ([]*Attendance, int, error) {
	return r.list(ctx, `date = $1`, date, limit, offset)
}

func (r *attendanceRepoPG) list(ctx context.Context, where string, arg interface{}, limit, offset int) ([]*Attendance, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM attendance WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+attendanceCols+` FROM attendance WHERE `+where+` ORDER BY date DESC, check_in DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Attendance
	for rows.Next() {
		a, err := r.scanAttendance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

// =========== Leave Repository ===========

type leaveRepoPG struct{ pool *pgxpool.Pool }

func NewLeaveRepoPG(pool *pgxpool.Pool) LeaveRepository { return &leaveRepoPG{pool: pool} }

func (r *leaveRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const leaveCols = `id, user_id, type, from_date, to_date, reason, status, decided_by, comment, decided_at, created_at`

func (r *leaveRepoPG) scanLeave(row pgx.Row) (*LeaveRequest, error) {
	var l LeaveRequest
	err := row.Scan(&l.ID, &l.UserID, &l.Type, &l.FromDate, &l.ToDate, &l.Reason, &l.Status,
		&l.DecidedBy, &l.Comment, &l.DecidedAt, &l.CreatedAt)
	return &l, err
}

func (r *leaveRepoPG) Create(ctx context.Context, l *LeaveRequest) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO leave_requests (id, user_id, type, from_date, to_date, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.UserID, l.Type, l.FromDate, l.ToDate, l.Reason, l.Status)
	return err
}

func (r *leaveRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	return r.scanLeave(r.conn(ctx).QueryRow(ctx, `SELECT `+leaveCols+` FROM leave_requests WHERE id = $1`, id))
}

func (r *leaveRepoPG) Decide(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, comment *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE leave_requests SET status = $2, decided_by = $3, comment = $4, decided_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, status, decidedBy, comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (r *leaveRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LeaveRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+leaveCols+` FROM leave_requests WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LeaveRequest
	for rows.Next() {
		l, err := r.scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

func (r *leaveRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*LeaveRequest, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leaveCols + ` FROM leave_requests` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LeaveRequest
	for rows.Next() {
		l, err := r.scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}
