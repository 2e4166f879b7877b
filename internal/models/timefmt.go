package models

import (
	"strings"
	"time"
)

// Layouts seen in CRM activity exports. Zone-less stamps are read as UTC.
// Month-first is tried before day-first for slash dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/06",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-Jan-2006 15:04:05",
	"02 Jan 2006 15:04",
}

// ParseTime reads a timestamp cell. Time cells pass through; text is tried
// against the known layouts; anything else is rejected.
func ParseTime(v Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
