package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(dup) {
		t.Error("expected true for a 23505 error")
	}
	if !IsUniqueViolation(fmt.Errorf("insert user: %w", dup)) {
		t.Error("expected true for a wrapped 23505 error")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign-key violations are not duplicates")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Error("expected false for a non-Postgres error")
	}
	if IsUniqueViolation(nil) {
		t.Error("expected false for nil")
	}
}
