package analytics

import (
	"fmt"
	"time"

	"github.com/meltforce/gymlog/internal/models"
)

// DefaultHistoryBuckets is the number of distinct days a history chart spans.
const DefaultHistoryBuckets = 25

// HistoryPoint is one charted value within a day bucket. Scaled is the
// min-max normalized position (2 significant figures) and Value the raw
// performance scalar (3 significant figures) for tooltips.
type HistoryPoint struct {
	Scaled    string `json:"scaled"`
	Value     string `json:"value"`
	Today     bool   `json:"today"`
	Difficult bool   `json:"difficult"`
}

// History buckets an exercise's sets by whole-day offset from now and
// min-max scales the performance values for charting.
//
// Sets must arrive in descending timestamp order. The per-set scalar depends
// on the exercise kind: weight*repetitions, distance/time, or raw seconds.
// Sets with an incomplete payload for their kind carry no displayable value
// and are skipped. Accumulation stops as soon as maxBuckets distinct day
// offsets have been seen, so the oldest retained bucket may hold only its
// most recent set; the min/max used for scaling come from the same scan.
func History(sets []models.Set, kind models.ExerciseKind, maxBuckets int, now time.Time) (map[int][]HistoryPoint, error) {
	if maxBuckets <= 0 {
		maxBuckets = DefaultHistoryBuckets
	}

	type rawPoint struct {
		value     float64
		today     bool
		difficult bool
	}

	buckets := make(map[int][]rawPoint)
	var minValue, maxValue float64
	seen := false

	now = now.UTC()

	for _, s := range sets {
		value, ok := historyValue(s, kind)
		if !ok {
			continue
		}

		t, err := ParseTimestamp(s.Timestamp)
		if err != nil {
			return nil, err
		}

		offset := DayOffset(t, now)
		buckets[offset] = append(buckets[offset], rawPoint{
			value:     value,
			today:     sameDay(t, now),
			difficult: s.Difficult,
		})

		if !seen || value > maxValue {
			maxValue = value
		}
		if !seen || value < minValue {
			minValue = value
		}
		seen = true

		if len(buckets) == maxBuckets {
			break
		}
	}

	// Pad the range so extreme points aren't flush against the chart axes.
	effectiveMax := maxValue * 1.06
	effectiveMin := minValue * 0.9

	result := make(map[int][]HistoryPoint, len(buckets))
	for offset, points := range buckets {
		scaled := make([]HistoryPoint, 0, len(points))
		for _, p := range points {
			scaled = append(scaled, HistoryPoint{
				Scaled:    fmt.Sprintf("%.2g", scaleValue(p.value, effectiveMin, effectiveMax)),
				Value:     fmt.Sprintf("%.3g", p.value),
				Today:     p.today,
				Difficult: p.difficult,
			})
		}
		result[offset] = scaled
	}
	return result, nil
}

// scaleValue normalizes value into [0,1] over the padded range. A degenerate
// range (every set the same value) scales to 1.0 so a flat series still
// renders at full height.
func scaleValue(value, effectiveMin, effectiveMax float64) float64 {
	if effectiveMax == effectiveMin {
		return 1.0
	}
	return (value - effectiveMin) / (effectiveMax - effectiveMin)
}

// historyValue extracts the kind-dependent performance scalar from a set.
func historyValue(s models.Set, kind models.ExerciseKind) (float64, bool) {
	switch kind {
	case models.WeightRepetitions:
		if s.Weight == nil || s.Repetitions == nil {
			return 0, false
		}
		return *s.Weight * float64(*s.Repetitions), true
	case models.DistanceTime:
		if s.Distance == nil || s.TimeS == nil || *s.TimeS == 0 {
			return 0, false
		}
		return *s.Distance / float64(*s.TimeS), true
	case models.Time:
		if s.TimeS == nil {
			return 0, false
		}
		return float64(*s.TimeS), true
	}
	return 0, false
}
