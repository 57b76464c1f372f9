package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
)

// Logger writes one structured line per request after the handler returns.
// When the session middleware has resolved the caller, the line carries
// their id and role so request logs join against the activity trail.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			// The response status is not committed yet when the handler
			// returns an error; resolve it from the error instead.
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			evt := logger.Info()
			if status >= http.StatusInternalServerError {
				evt = logger.Error().Err(err)
			}

			ctx := req.Context()
			if userID := auth.UserIDFromContext(ctx); userID != uuid.Nil {
				evt = evt.
					Str("user_id", userID.String()).
					Str("role", string(auth.RoleFromContext(ctx)))
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("http request")

			return err
		}
	}
}
