package activity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/internal/platform/metrics"
)

// Recorder appends audit entries. Recording is best-effort: a failed write
// is logged and counted but never surfaces to the caller.
type Recorder struct {
	repo   LogRepository
	logger zerolog.Logger
}

func NewRecorder(repo LogRepository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one entry to the audit trail.
func (r *Recorder) Record(ctx context.Context, l *Log) {
	if err := r.repo.Create(ctx, l); err != nil {
		r.logger.Error().Err(err).
			Str("action", l.Action).
			Str("entity", l.Entity).
			Msg("activity: record failed")
		metrics.RecordSideEffectFailure("activity_log")
	}
}

var methodActions = map[string]string{
	http.MethodPost:   ActionCreate,
	http.MethodPut:    ActionUpdate,
	http.MethodPatch:  ActionUpdate,
	http.MethodDelete: ActionDelete,
}

// Middleware audits successful mutating requests. The entity name is the
// first path segment after the API prefix, the entity id the :id param
// when present.
func Middleware(rec *Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			action, ok := methodActions[c.Request().Method]
			if !ok || err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}

			entry := &Log{
				Action: action,
				Entity: entityFromPath(c.Path()),
				IP:     c.RealIP(),
			}
			ctx := c.Request().Context()
			if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
				entry.UserID = &userID
			}
			if id := c.Param("id"); id != "" {
				entry.EntityID = &id
			}
			rec.Record(ctx, entry)

			return nil
		}
	}
}

func entityFromPath(path string) string {
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", "api", "v1":
			continue
		}
		return seg
	}
	return "unknown"
}
