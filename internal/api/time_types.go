package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// TimestampLayout is ISO 8601 with millisecond precision, shared with the books file.
const TimestampLayout = domain.TimestampLayout

// Timestamp is a time that always marshals to TimestampLayout in UTC and
// unmarshals from either:
// - RFC3339 string, with or without fractional seconds
// - Epoch milliseconds, as a number or a string
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON outputs the time in TimestampLayout.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.UTC().Format(TimestampLayout))
}

// UnmarshalJSON handles flexible time parsing from JSON.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			ts.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		return fmt.Errorf("cannot parse time string: %s", s)
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		ts.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into Timestamp", string(data))
}

// Schema documents Timestamp as a date-time string.
func (Timestamp) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{Type: huma.TypeString, Format: "date-time"}
}
