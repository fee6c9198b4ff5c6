package outbox

import "gorm.io/gorm/clause"

// forUpdateSkipLocked is a no-op on SQLite, which GORM handles by ignoring the
// locking clause; on Postgres it keeps concurrent dispatchers off the same rows.
func forUpdateSkipLocked() clause.Expression {
	return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
}
