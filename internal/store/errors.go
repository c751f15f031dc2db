package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by Store methods. Callers above this layer
// (the registration engine, the event service) translate these into
// apperr.Kind values; Store itself stays storage-shaped.
var (
	ErrNotFound             = errors.New("store: not found")
	ErrUniqueViolation      = errors.New("store: unique constraint violation")
	ErrForeignKeyViolation  = errors.New("store: foreign key violation")
	ErrCapacityExceeded     = errors.New("store: capacity check violation")
	ErrSerializationFailure = errors.New("store: serialization failure")
)

// Postgres error codes we care about as defense-in-depth constraints.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classify maps a raw pgx error to one of the sentinels above, leaving
// everything else untouched so internal/apperr or the caller can wrap
// it as Internal.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrUniqueViolation
		case pgForeignKeyViolation:
			return ErrForeignKeyViolation
		case pgCheckViolation:
			return ErrCapacityExceeded
		case pgSerializationFailure, pgDeadlockDetected:
			return ErrSerializationFailure
		}
	}
	return err
}

// IsTransient reports whether err represents a retryable Store fault.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSerializationFailure)
}
