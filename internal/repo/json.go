package repo

import (
	"database/sql"
	"encoding/json"
)

// JSON column codecs. Reads never fail: a malformed or empty stored value
// decodes to the caller's default so historical corruption degrades to an
// empty value instead of poisoning every read of the row.

// decodeJSONOr unmarshals raw into T, returning def when raw is empty or
// malformed.
func decodeJSONOr[T any](raw string, def T) T {
	if raw == "" {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}

// encodeJSON marshals v for storage in a JSON column. Values that cannot
// marshal store as the JSON null literal; every decode path tolerates that.
func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// nullable converts an optional string to its SQL value: empty stores NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// stringOf unwraps a nullable TEXT column scan.
func stringOf(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
