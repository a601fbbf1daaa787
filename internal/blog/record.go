package blog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyTimestampLayout is a naive ISO-8601 timestamp, as written by older
// clients of the same records collection.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// Record is a saved prompt together with the text generated for it.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp is written as RFC 3339 with nanoseconds. Values without a zone
// are read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) String() string {
	return t.Time.Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp not a string: %w", err)
	}

	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseTimestamp(raw string) (Timestamp, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return NewTimestamp(parsed), nil
	}
	parsed, err := time.Parse(legacyTimestampLayout, raw)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return NewTimestamp(parsed), nil
}
