package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for duplicate-key violations.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres duplicate-key error.
// Services use it to translate constraint races into domain errors instead
// of surfacing a bare database failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
