package extract

import (
	"strings"
	"time"
)

// timestampLayouts are the zone-less forms the tracking page prints
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses a normalized timestamp in loc (UTC when nil)
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeTimestamp keeps the longest leading date or date+time that parses.
// The labeled capture can run into unrelated digits on the following line.
func normalizeTimestamp(raw string) (string, bool) {
	tokens := strings.Fields(raw)
	n := len(tokens)
	if n > 2 {
		n = 2
	}
	for ; n > 0; n-- {
		candidate := strings.Join(tokens[:n], " ")
		if _, ok := ParseTimestamp(candidate, time.UTC); ok {
			return candidate, true
		}
	}
	return "", false
}
