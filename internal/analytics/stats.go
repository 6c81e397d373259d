package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/meltforce/gymlog/internal/models"
)

// ExerciseStats are the headline figures shown on an exercise page.
type ExerciseStats struct {
	Headline      string `json:"specificStat"`
	HeadlineLabel string `json:"specificStatHeading"`
	LastWorkout   string `json:"lastWorkout"`
	LastSet       string `json:"lastSet"`
	Aggregate     string `json:"aggregate"`
}

// Stats summarises an exercise's full set history. Sets must arrive in
// descending timestamp order; the first entry is the most recent set.
//
// Per kind the headline is a Brzycki one-rep-max estimate of the latest set,
// the latest set's speed, or the longest time ever recorded. The aggregate
// totals the trailing 365 days: tonnage in kg, distance in km, or time as
// H:MM:SS. With no sets every field is empty.
func Stats(sets []models.Set, kind models.ExerciseKind, now time.Time) (ExerciseStats, error) {
	if len(sets) == 0 {
		return ExerciseStats{}, nil
	}

	latest := sets[0]
	latestTime, err := ParseTimestamp(latest.Timestamp)
	if err != nil {
		return ExerciseStats{}, err
	}

	stats := ExerciseStats{
		LastWorkout: latestTime.Format("Jan 02"),
		LastSet:     SetSummary(latest),
	}

	switch kind {
	case models.WeightRepetitions:
		if latest.Weight != nil && latest.Repetitions != nil {
			stats.Headline = fmt.Sprintf("%.1f kg", OneRepMax(*latest.Weight, *latest.Repetitions))
			stats.HeadlineLabel = "1 rep max"
		}
		var tonnage float64
		for _, s := range sets {
			if s.Weight == nil || s.Repetitions == nil {
				continue
			}
			recent, err := WithinYear(s.Timestamp, now)
			if err != nil {
				return ExerciseStats{}, err
			}
			if recent {
				tonnage += *s.Weight * float64(*s.Repetitions)
			}
		}
		stats.Aggregate = groupThousands(fmt.Sprintf("%g", tonnage)) + " kg"

	case models.DistanceTime:
		if latest.Distance != nil && latest.TimeS != nil && *latest.TimeS != 0 {
			stats.Headline = fmt.Sprintf("%.1f m/s", *latest.Distance/float64(*latest.TimeS))
			stats.HeadlineLabel = "Speed"
		}
		var meters float64
		for _, s := range sets {
			if s.Distance == nil {
				continue
			}
			recent, err := WithinYear(s.Timestamp, now)
			if err != nil {
				return ExerciseStats{}, err
			}
			if recent {
				meters += *s.Distance
			}
		}
		stats.Aggregate = groupThousands(fmt.Sprintf("%.2f", meters/1000)) + " km"

	case models.Time:
		// Longest spans the whole history, not just the trailing year.
		longest := 0
		haveTime := false
		var totalSeconds int
		for _, s := range sets {
			if s.TimeS == nil {
				continue
			}
			haveTime = true
			if *s.TimeS > longest {
				longest = *s.TimeS
			}
			recent, err := WithinYear(s.Timestamp, now)
			if err != nil {
				return ExerciseStats{}, err
			}
			if recent {
				totalSeconds += *s.TimeS
			}
		}
		if haveTime {
			stats.Headline = fmt.Sprintf("%.1f s", float64(longest))
			stats.HeadlineLabel = "Longest"
		}
		stats.Aggregate = clock(totalSeconds)
	}

	return stats, nil
}

// OneRepMax estimates the maximum single-repetition weight via the Brzycki
// formula.
func OneRepMax(weight float64, reps int) float64 {
	return weight / (1.0278 - 0.0278*float64(reps))
}

// groupThousands inserts comma separators into the integer part of a
// formatted number, e.g. "12725.5" -> "12,725.5".
func groupThousands(number string) string {
	intPart := number
	rest := ""
	if i := strings.IndexAny(number, ".eE"); i >= 0 {
		intPart, rest = number[:i], number[i:]
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	n := len(intPart)
	if n <= 3 {
		return sign + intPart + rest
	}

	var b strings.Builder
	b.WriteString(sign)
	head := n % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + rest
}
