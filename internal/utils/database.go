package utils

import (
	"database/sql"
)

// NullStringOrEmpty returns the string value if valid, otherwise returns an empty string
func NullStringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullInt64OrDefault returns the int64 value if valid, otherwise returns the default value
func NullInt64OrDefault(ni sql.NullInt64, defaultValue int64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return defaultValue
}

// NullInt64Ptr returns a pointer to the value, or nil when the column was NULL.
func NullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// ToNullString converts an empty string to a NULL column value.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
