package analytics

import (
	"fmt"
	"strconv"

	"github.com/meltforce/gymlog/internal/models"
)

// SetSummary renders a set as a one-line display string, e.g. "5 x 82.5 kg",
// "5.00 km / 25:00" or "45 s".
//
// Which fields are present decides the shape, checked in a fixed precedence
// order (weight-repetitions, then distance-time, then time-only) regardless
// of the exercise's declared kind. A record whose payload doesn't match its
// kind still degrades to whichever summary its fields support, and a set
// with no usable fields renders as the empty string.
func SetSummary(s models.Set) string {
	switch {
	case s.Repetitions != nil && s.Weight != nil:
		return fmt.Sprintf("%d x %s kg", *s.Repetitions, formatFloat(*s.Weight))
	case s.Distance != nil && s.TimeS != nil:
		return fmt.Sprintf("%.2f km / %s", *s.Distance/1000, trimmedClock(*s.TimeS))
	case s.TimeS != nil:
		return fmt.Sprintf("%d s", *s.TimeS)
	default:
		return ""
	}
}

// formatFloat prints a weight exactly as stored, no rounding or padding.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimmedClock formats seconds as MM:SS with the hours place dropped.
func trimmedClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds%3600/60, seconds%60)
}

// clock formats seconds as H:MM:SS.
func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
