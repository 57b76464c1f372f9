package admission

import (
	"context"
	"fmt"
	"time"

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

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{pool: pool} }

func (r *bedRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bedCols = `id, room_number, bed_number, ward, status, daily_rate, patient_id, assigned_by, admitted_at, discharged_at, created_at, updated_at`

func (r *bedRepoPG) scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.RoomNumber, &b.BedNumber, &b.Ward, &b.Status, &b.DailyRate,
		&b.PatientID, &b.AssignedBy, &b.AdmittedAt, &b.DischargedAt, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO beds (id, room_number, bed_number, ward, status, daily_rate)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.RoomNumber, b.BedNumber, b.Ward, b.Status, b.DailyRate)
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return r.scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM beds WHERE id = $1`, id))
}

func (r *bedRepoPG) Assign(ctx context.Context, id, patientID, assignedBy uuid.UUID, admittedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status = 'occupied', patient_id = $2, assigned_by = $3,
			admitted_at = $4, discharged_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'available'`,
		id, patientID, assignedBy, admittedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedUnavailable
	}
	return nil
}

func (r *bedRepoPG) Discharge(ctx context.Context, id uuid.UUID, dischargedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status = 'available', patient_id = NULL, assigned_by = NULL,
			admitted_at = NULL, discharged_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'occupied'`,
		id, dischargedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotOccupied
	}
	return nil
}

func (r *bedRepoPG) SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, to, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedUnavailable
	}
	return nil
}

func (r *bedRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM beds`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bedCols + ` FROM beds` + where +
		fmt.Sprintf(` ORDER BY room_number, bed_number LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Bed
	for rows.Next() {
		b, err := r.scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}
