package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound signals that no row matched, including rows owned by
	// someone else.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrCapacityReached signals that an event has no seats left.
	ErrCapacityReached = errors.New("event capacity reached")
)

const pqUniqueViolation = "23505"

// isUniqueViolation recognises unique constraint failures from both
// supported drivers. SQLite errors are matched on their message so the
// package builds without cgo.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
