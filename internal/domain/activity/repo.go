package activity

import "context"

// LogRepository persists audit log entries.
type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	// Search filters on action, entity, user_id, start_date and end_date.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Log, int, error)
}
