package dbx

import (
	"database/sql"
	"time"
)

// The local SQLite store keeps timestamps as INTEGER unix nanoseconds, which
// sorts correctly and round-trips without driver-specific time parsing.

// UnixNano converts t to its stored form.
func UnixNano(t time.Time) int64 {
	return t.UnixNano()
}

// FromUnixNano converts a stored value back to a UTC time.
func FromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// NullUnixNano converts an optional time to a nullable column value.
func NullUnixNano(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// TimePtr converts a nullable column value back to an optional time.
func TimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := FromUnixNano(n.Int64)
	return &t
}
