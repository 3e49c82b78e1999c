package http

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp accepts the date formats clients actually send: RFC 3339, a bare
// "2006-01-02" date, or an ISO timestamp without zone. It marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range timestampFormats {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// TimePtr returns the wrapped time, or nil for the nil receiver. Request
// types use *Timestamp fields so absence survives into the patch structs.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	tt := t.Time
	return &tt
}
