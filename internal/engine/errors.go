package engine

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound covers both identifiers that resolve to nothing and
// identifiers that do not even parse; the message deliberately does not say
// which id was wrong.
var ErrNotFound = errors.New("requested object not found")

// ValidationError carries the full list of human-readable messages for a
// rejected write, mirroring how the API reports them to clients.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func validationError(messages ...string) error {
	return &ValidationError{Messages: messages}
}

// mapNotFound translates storage-level row misses into the boundary error.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// checkID rejects identifiers that do not have a valid shape before any
// storage lookup happens; a malformed id behaves exactly like a missing one.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return nil
}
