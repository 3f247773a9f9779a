package sqlite

import (
	"context"
	"errors"
	"strings"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isUnavailable covers the failure modes where the store itself could not
// serve the statement, as opposed to the statement being rejected.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "sql: database is closed")
}
