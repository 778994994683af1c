package dataprocessing

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateAttempt is one independent step of the start time parsing chain.
type dateAttempt func(string) (time.Time, error)

func layoutAttempt(layout string) dateAttempt {
	return func(s string) (time.Time, error) {
		return time.ParseInLocation(layout, s, time.UTC)
	}
}

// startTimeAttempts are tried in order; the first success wins.
var startTimeAttempts = []dateAttempt{
	func(s string) (time.Time, error) { return dateparse.ParseIn(s, time.UTC) },
	layoutAttempt("1/2/2006 3:04:05 PM"), // month/day/year, 12 hour
	layoutAttempt("2/1/2006 15:04:05"),   // day/month/year, 24 hour
}

// ParseStartTime parses a session start time. It returns nil when the value is
// empty or no attempt accepts it.
func ParseStartTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, attempt := range startTimeAttempts {
		if t, err := attempt(raw); err == nil {
			return &t
		}
	}
	return nil
}
