package activity

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

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository { return &logRepoPG{pool: pool} }

func (r *logRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const logCols = `id, user_id, action, entity, entity_id, details, ip, created_at`

func (r *logRepoPG) Create(ctx context.Context, l *Log) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO activity_logs (id, user_id, action, entity, entity_id, details, ip)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		l.ID, l.UserID, l.Action, l.Entity, l.EntityID, l.Details, l.IP)
	return err
}

func (r *logRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Log, int, error) {
	query := `SELECT ` + logCols + ` FROM activity_logs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM activity_logs WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if v := params["action"]; v != "" {
		query += fmt.Sprintf(` AND action = $%d`, idx)
		countQuery += fmt.Sprintf(` AND action = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v := params["entity"]; v != "" {
		query += fmt.Sprintf(` AND entity = $%d`, idx)
		countQuery += fmt.Sprintf(` AND entity = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v := params["user_id"]; v != "" {
		query += fmt.Sprintf(` AND user_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND user_id = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v := params["start_date"]; v != "" {
		query += fmt.Sprintf(` AND created_at::date >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at::date >= $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v := params["end_date"]; v != "" {
		query += fmt.Sprintf(` AND created_at::date <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at::date <= $%d`, idx)
		args = append(args, v)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Entity, &l.EntityID, &l.Details, &l.IP, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &l)
	}
	return items, total, nil
}
