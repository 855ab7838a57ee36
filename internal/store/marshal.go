package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/linecheck/internal/matcher"
)

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// marshalFailure converts a failure to JSON TEXT, or NULL when there is none.
// HTML escaping is disabled so patterns containing '<' or '&' stay readable in
// the database.
func marshalFailure(f *matcher.Failure) (sql.NullString, error) {
	if f == nil {
		return sql.NullString{}, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return sql.NullString{}, fmt.Errorf("marshal failure: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return sql.NullString{String: strings.TrimSpace(buf.String()), Valid: true}, nil
}

// unmarshalFailure parses JSON TEXT written by marshalFailure.
func unmarshalFailure(data sql.NullString) (*matcher.Failure, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var f matcher.Failure
	if err := json.Unmarshal([]byte(data.String), &f); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &f, nil
}
