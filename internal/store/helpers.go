package store

import (
	"encoding/json"
	"time"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalList encodes a string list as JSON text for storage, returning nil
// for empty lists so the column stays NULL.
func marshalList(values []string) interface{} {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		// []string cannot fail to marshal; keep the column NULL if it somehow does.
		return nil
	}
	return string(raw)
}

// recordTime returns the record's creation time, defaulting to now so the
// column never receives a zero timestamp.
func recordTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
