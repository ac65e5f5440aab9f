package format

import (
	"fmt"
	"time"
)

const (
	dayLength  = 24 * time.Hour
	soonWindow = 14.0 // days
)

// Layouts without a zone are read in the caller's location, except the
// bare date which the API sends for application periods and which is
// treated as UTC midnight.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Parse reads an API timestamp. ok is false for empty or unrecognised
// input.
func Parse(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date renders s as YYYY/MM/DD in the local time zone.
func Date(s string) string {
	return DateIn(s, time.Local)
}

// DateIn renders s as YYYY/MM/DD using the calendar of loc.
func DateIn(s string, loc *time.Location) string {
	t, ok := Parse(s, loc)
	if !ok {
		return NotAvailable
	}
	return t.In(loc).Format("2006/01/02")
}

// DatePtr is Date for optional fields.
func DatePtr(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return Date(*s)
}

// DateTime renders a full local timestamp in the Japanese short style,
// e.g. 2024/3/5 9:07:00.
func DateTime(s string) string {
	return DateTimeIn(s, time.Local)
}

func DateTimeIn(s string, loc *time.Location) string {
	t, ok := Parse(s, loc)
	if !ok {
		return NotAvailable
	}
	t = t.In(loc)
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// DeadlineSoon reports whether the deadline is between now and 14 days
// from now, inclusive.
func DeadlineSoon(s *string) bool {
	if s == nil {
		return false
	}
	return DeadlineSoonAt(*s, time.Now())
}

// DeadlineSoonAt is DeadlineSoon evaluated at now. The difference is a
// fractional day count, not a calendar-day difference.
func DeadlineSoonAt(s string, now time.Time) bool {
	deadline, ok := Parse(s, now.Location())
	if !ok {
		return false
	}
	diff := float64(deadline.Sub(now)) / float64(dayLength)
	return diff >= 0 && diff <= soonWindow
}
