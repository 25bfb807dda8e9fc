package postgres

import (
	"errors"

	"github.com/lib/pq"

	"eventseating/internal/domain"
)

const uniqueViolationCode = "23505"

// uniqueViolation reports whether err is a unique constraint violation and, if so, the
// name of the violated constraint.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return pqErr.Constraint, true
	}
	return "", false
}

const invalidTextRepresentationCode = "22P02"

// notFoundIfMalformed turns Postgres' rejection of a malformed UUID key into ErrNotFound,
// since no row can have that id.
func notFoundIfMalformed(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentationCode {
		return domain.ErrNotFound
	}
	return err
}
