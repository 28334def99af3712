package models

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted ISO-8601 shapes, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses an attribute value as an ISO-8601 date or datetime.
// Values arrive as strings from JSON; anything else is stringified first so
// a date stored oddly still gets one parse attempt before failing.
func ParseDate(value any) (time.Time, error) {
	s := strings.TrimSpace(fmt.Sprintf("%v", value))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Midnight truncates t to the start of its day in UTC. Expiry math compares
// whole days, never clock times.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from 'from' midnight to 'to' midnight;
// negative when 'to' lies in the past.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}
