package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTimestamp is returned when a stored timestamp string does not
// parse as ISO-8601. It is fatal to the single query touching the value, not
// to the process.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// TimestampLayout is the persisted timestamp format: ISO-8601 UTC at second
// precision with a literal Z designator.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ParseTimestamp parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}
	return t.UTC(), nil
}

// FormatTimestamp renders t in the persisted layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// IsToday reports whether ts falls on the same UTC calendar day as now.
// An empty timestamp is never today.
func IsToday(ts string, now time.Time) (bool, error) {
	if ts == "" {
		return false, nil
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return false, err
	}
	return sameDay(t, now.UTC()), nil
}

// WithinYear reports whether ts is at most 365 calendar days before now.
// The comparison uses the calendar-date difference, not elapsed seconds.
func WithinYear(ts string, now time.Time) (bool, error) {
	if ts == "" {
		return false, nil
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return false, err
	}
	days := truncateDay(now.UTC()).Sub(truncateDay(t)) / (24 * time.Hour)
	return days <= 365, nil
}

// RelativeTime converts ts into a human readable phrase relative to now:
// "Just now", "5 mins ago", "Earlier today", "Yesterday", "3 days ago", or
// an absolute date once more than a week has passed.
func RelativeTime(ts string, now time.Time) (string, error) {
	if ts == "" {
		return "Never", nil
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return "", err
	}

	now = now.UTC()
	elapsed := int(now.Sub(t).Seconds())

	if sameDay(t, now) {
		switch {
		case elapsed < 60:
			return "Just now", nil
		case elapsed < 3600:
			mins := elapsed / 60
			return fmt.Sprintf("%d %s ago", mins, pluralize("min", mins)), nil
		case elapsed < 3600*12:
			hours := elapsed / 3600
			return fmt.Sprintf("%d %s ago", hours, pluralize("hour", hours)), nil
		default:
			return "Earlier today", nil
		}
	}

	switch {
	case elapsed < 3600*24*2:
		return "Yesterday", nil
	case elapsed < 3600*24*7:
		return fmt.Sprintf("%d days ago", elapsed/(3600*24)), nil
	default:
		return t.Format("Jan 02 2006"), nil
	}
}

// DayOffset returns the whole-day offset of t relative to now, negative for
// the past. The division floors toward negative infinity, so a set logged
// earlier today lands at -1 and only a set logged this very second lands at 0.
func DayOffset(t, now time.Time) int {
	secs := int(t.Sub(now).Seconds())
	offset := secs / 86400
	if secs%86400 < 0 {
		offset--
	}
	return offset
}

func pluralize(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
