package store

import (
	"database/sql"
	"errors"
	"strings"
)

// Error taxonomy for the persistent store. Callers branch with errors.Is.
var (
	// ErrStorageUnavailable means the database could not be opened at all.
	// Fatal: surfaced to the caller, no automatic retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means no record exists for the given key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey means an insert collided with an existing primary key.
	// Callers should fall back to an update path.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrTxAborted means the transaction rolled back without committing.
	// The engine guarantees no partial state; the whole operation can be retried.
	ErrTxAborted = errors.New("transaction aborted")
)

// mapError translates driver-level errors into the store taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as plain errors carrying the constraint text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
