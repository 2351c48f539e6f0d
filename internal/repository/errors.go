package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage errors for games and their rotation history. Backends return these
// (possibly wrapped) so services never see driver types.
var (
	ErrNotFound      = errors.New("game not found")
	ErrAlreadyExists = errors.New("game already exists")
	// ErrConflict covers history written for a game that is gone and transactions
	// that lost a race with another writer.
	ErrConflict = errors.New("conflicting game write")
	// ErrInvalidRecord is a rotation record the schema refuses, e.g. an action other than in/out.
	ErrInvalidRecord = errors.New("invalid rotation record")
)

// MapPgError translates the Postgres codes my schema can raise into storage errors,
// keeping the constraint name for the logs. Anything else passes through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return withConstraint(ErrAlreadyExists, pgErr)
	case pgerrcode.ForeignKeyViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return withConstraint(ErrConflict, pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return withConstraint(ErrInvalidRecord, pgErr)
	}
	return err
}

func withConstraint(sentinel error, pgErr *pgconn.PgError) error {
	if pgErr.ConstraintName == "" {
		return sentinel
	}
	return fmt.Errorf("%w (%s)", sentinel, pgErr.ConstraintName)
}
