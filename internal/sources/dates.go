package sources

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when normalizing a raw publish date.
// RSS feeds, meta tags, and article pages disagree wildly on formats;
// the list covers everything the supported sources emit.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"January 2, 2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2006-01-02",
	"02 Jan 2006 15:04:05 -0700",
	"02 Jan 2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseDate attempts to parse a raw date string with each known layout.
// The boolean reports whether any layout matched.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "unknown") {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// NormalizeDate returns the first parseable candidate, in preference
// order. Normalization never fails: when no candidate parses, the
// fallback time is returned so an article with a mangled date is still
// ingested.
func NormalizeDate(fallback time.Time, candidates ...string) time.Time {
	for _, raw := range candidates {
		if t, ok := ParseDate(raw); ok {
			return t
		}
	}
	return fallback
}
