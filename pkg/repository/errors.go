package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgForeignKeyCode       = "23503"
	pgCheckViolationCode   = "23514"
	pgInvalidTextRepresent = "22P02"
)

// ErrConstraint indicates a row rejected by a foreign key, check
// constraint, or malformed value.
var ErrConstraint = errors.New("constraint violation")

// MapError translates database errors to domain errors: sql.ErrNoRows to
// notFoundErr, unique violations to duplicateErr, and foreign key, check,
// or invalid text errors to ErrConstraint. Other errors pass through.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgForeignKeyCode, pgCheckViolationCode, pgInvalidTextRepresent:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		}
	}

	return err
}
