package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
)

func newLoggedContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "rid-1")
	return c, rec
}

func TestLoggerResolvesStatusFromHandlerError(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newLoggedContext("/api/lab-reports")

	h := Logger(zerolog.New(&buf))(func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "lab report not found")
	})
	if err := h(c); err == nil {
		t.Fatal("expected the handler error to propagate")
	}

	out := buf.String()
	if !strings.Contains(out, `"status":404`) {
		t.Errorf("expected status 404 in log line, got %s", out)
	}
	if !strings.Contains(out, `"request_id":"rid-1"`) {
		t.Errorf("expected request id in log line, got %s", out)
	}
}

func TestLoggerIncludesCallerIdentity(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newLoggedContext("/api/appointments")
	userID := uuid.New()
	c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), userID, auth.RoleDoctor)))

	h := Logger(zerolog.New(&buf))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, userID.String()) {
		t.Errorf("expected user id in log line, got %s", out)
	}
	if !strings.Contains(out, `"role":"doctor"`) {
		t.Errorf("expected role in log line, got %s", out)
	}
}

func TestRecoveryTurnsPanicIntoInternalError(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newLoggedContext("/api/beds")

	h := Recovery(zerolog.New(&buf))(func(echo.Context) error {
		panic("boom")
	})
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", he.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic log line, got %s", buf.String())
	}
}
