package dto

import (
	"bytes"
	"fmt"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp accepts RFC 3339 timestamps as well as ISO 8601 timestamps without
// a zone, which are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a string")
	}
	raw := string(data[1 : len(data)-1])

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

// Ptr returns the wrapped time, or nil for a nil Timestamp.
func (t *Timestamp) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// Value returns the wrapped time, or the zero time for a nil Timestamp.
func (t *Timestamp) Value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}
