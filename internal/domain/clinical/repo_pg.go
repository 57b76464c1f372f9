package clinical

import (
	"context"

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

// =========== Lab Report Repository ===========

type labReportRepoPG struct{ pool *pgxpool.Pool }

func NewLabReportRepoPG(pool *pgxpool.Pool) LabReportRepository { return &labReportRepoPG{pool: pool} }

func (r *labReportRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labCols = `id, patient_id, ordered_by, test_name, category, status, result, completed_at, created_at`

func (r *labReportRepoPG) scanReport(row pgx.Row) (*LabReport, error) {
	var rep LabReport
	err := row.Scan(&rep.ID, &rep.PatientID, &rep.OrderedBy, &rep.TestName, &rep.Category,
		&rep.Status, &rep.Result, &rep.CompletedAt, &rep.CreatedAt)
	return &rep, err
}

func (r *labReportRepoPG) Create(ctx context.Context, rep *LabReport) error {
	rep.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_reports (id, patient_id, ordered_by, test_name, category, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rep.ID, rep.PatientID, rep.OrderedBy, rep.TestName, rep.Category, rep.Status)
	return err
}

func (r *labReportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabReport, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx, `SELECT `+labCols+` FROM lab_reports WHERE id = $1`, id))
}

func (r *labReportRepoPG) Start(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_reports SET status = 'in_progress'
		WHERE id = $1 AND status = 'ordered'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCompleted
	}
	return nil
}

func (r *labReportRepoPG) Complete(ctx context.Context, id uuid.UUID, result string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_reports SET status = 'completed', result = $2, completed_at = NOW()
		WHERE id = $1 AND status IN ('ordered', 'in_progress')`, id, result)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCompleted
	}
	return nil
}

func (r *labReportRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_reports WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+labCols+` FROM lab_reports WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabReport
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, nil
}

func (r *labReportRepoPG) ListOpen(ctx context.Context, limit, offset int) ([]*LabReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_reports WHERE status <> 'completed'`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+labCols+` FROM lab_reports WHERE status <> 'completed' ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabReport
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, nil
}

// =========== History Repository ===========

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository { return &historyRepoPG{pool: pool} }

func (r *historyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const histCols = `id, patient_id, type, title, description, severity, active, recorded_by, created_at`

func (r *historyRepoPG) Create(ctx context.Context, h *HistoryRecord) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_history (id, patient_id, type, title, description, severity, active, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		h.ID, h.PatientID, h.Type, h.Title, h.Description, h.Severity, h.Active, h.RecordedBy)
	return err
}

func (r *historyRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE medical_history SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *historyRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HistoryRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_history WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+histCols+` FROM medical_history WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HistoryRecord
	for rows.Next() {
		var h HistoryRecord
		if err := rows.Scan(&h.ID, &h.PatientID, &h.Type, &h.Title, &h.Description, &h.Severity, &h.Active, &h.RecordedBy, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &h)
	}
	return items, total, nil
}
