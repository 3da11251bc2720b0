package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the PostgreSQL error code for a unique constraint
// violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// The handlers use it to turn duplicate inserts (an already-taken email, a
// repeated community join or course enrollment) into domain errors instead
// of surfacing raw database failures.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
