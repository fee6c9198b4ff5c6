package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique
// constraint violation. Callers that know the constraint name pass it to
// narrow the match to that specific index.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName == "" {
		return strings.Contains(msg, "duplicate key value")
	}
	return strings.Contains(msg, constraintName)
}
