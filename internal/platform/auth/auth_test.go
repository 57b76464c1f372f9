package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestSessionRoundTrip(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour, false)
	userID := uuid.New()

	token, err := mgr.Issue(userID, "Dr. Gray", RoleDoctor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %s, want %s", claims.Subject, userID)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("role = %s, want doctor", claims.Role)
	}
	if claims.Name != "Dr. Gray" {
		t.Errorf("name = %s, want Dr. Gray", claims.Name)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionManager("secret-a", time.Hour, false).Issue(uuid.New(), "x", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewSessionManager("secret-b", time.Hour, false).Verify(token); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	mgr := NewSessionManager("test-secret", -time.Minute, false)
	// ttl <= 0 falls back to the default, so build an expired manager directly.
	mgr.ttl = -time.Minute

	token, err := mgr.Issue(uuid.New(), "x", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Verify(token); err == nil {
		t.Error("expected verification to fail for an expired token")
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour, false)
	token, err := mgr.Issue(uuid.New(), "x", Role("superuser"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Verify(token); err == nil {
		t.Error("expected verification to fail for an unknown role")
	}
}

func TestMiddlewareSetsIdentityFromCookie(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour, false)
	userID := uuid.New()
	token, err := mgr.Issue(userID, "Nurse Joy", RoleReceptionist)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(mgr, nil)(func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != userID {
			t.Error("user id not propagated")
		}
		if RoleFromContext(ctx) != RoleReceptionist {
			t.Error("role not propagated")
		}
		if NameFromContext(ctx) != "Nurse Joy" {
			t.Error("name not propagated")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Middleware(mgr, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddlewareSkipper(t *testing.T) {
	mgr := NewSessionManager("test-secret", time.Hour, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	skipper := func(c echo.Context) bool { return true }
	handler := Middleware(mgr, skipper)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !called {
		t.Error("expected skipped request to reach the handler")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	invoke := func(role Role, allowed ...Role) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), uuid.New(), role))
		c := e.NewContext(req, httptest.NewRecorder())
		return RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	}

	if err := invoke(RoleDoctor, RoleDoctor); err != nil {
		t.Errorf("doctor on doctor route: %v", err)
	}
	if err := invoke(RoleAdmin, RoleDoctor); err != nil {
		t.Errorf("admin should pass every allow-list: %v", err)
	}
	err := invoke(RolePatient, RoleDoctor, RoleReceptionist)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient, got %v", err)
	}
}

func TestStaffRolesExcludePatient(t *testing.T) {
	for _, r := range StaffRoles() {
		if r == RolePatient {
			t.Error("patient listed as staff")
		}
		if !IsStaff(r) {
			t.Errorf("IsStaff(%s) = false", r)
		}
	}
	if IsStaff(RolePatient) {
		t.Error("IsStaff(patient) = true")
	}
	if IsStaff(Role("superuser")) {
		t.Error("unknown role counted as staff")
	}
}
