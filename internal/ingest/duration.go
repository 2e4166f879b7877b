package ingest

import (
	"regexp"
	"strconv"
)

// DurationStatus tells a parsed zero apart from text that carried no duration.
type DurationStatus int

const (
	// DurationParsed means at least one of the h/m/s components matched.
	DurationParsed DurationStatus = iota
	// DurationNoMatch means no component matched; the seconds value is 0.
	DurationNoMatch
	// DurationInvalid means a component matched but does not fit an int64.
	DurationInvalid
)

func (s DurationStatus) String() string {
	switch s {
	case DurationParsed:
		return "parsed"
	case DurationNoMatch:
		return "no-match"
	default:
		return "invalid"
	}
}

// Segments are optional and independent: "1h:20m:5s", "1m:0s", "1h:20s", "45s".
var durationRE = regexp.MustCompile(`^(?:(\d+)h:)?(?:(\d+)m:)?(?:(\d+)s)?`)

// ParseDuration converts an "Hh:Mm:Ss"-like string into total seconds.
// It never fails: empty or garbage text yields (0, DurationNoMatch).
func ParseDuration(text string) (int64, DurationStatus) {
	m := durationRE.FindStringSubmatch(text)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return 0, DurationNoMatch
	}
	var total int64
	for i, unit := range [...]int64{3600, 60, 1} {
		s := m[i+1]
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n > (1<<62)/unit {
			return 0, DurationInvalid
		}
		total += n * unit
		if total < 0 {
			return 0, DurationInvalid
		}
	}
	return total, DurationParsed
}
