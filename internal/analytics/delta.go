package analytics

import "github.com/meltforce/gymlog/internal/models"

// Delta computes the percentage change between a set and its immediate
// predecessor. For weight-bearing sets the delta comes from the weight alone
// (repetitions ignored); for distance-time sets from the rate distance/time;
// for time-only sets from the time. A zero previous value yields no delta,
// and an exact zero change is normalized to nil: "no notable change" rather
// than a literal zero, so the display layer can omit the badge entirely.
func Delta(current, previous *models.Set) *float64 {
	if current == nil || previous == nil {
		return nil
	}

	var change float64

	switch {
	case current.Weight != nil && previous.Weight != nil:
		if *previous.Weight != 0 {
			change = (*current.Weight - *previous.Weight) / *previous.Weight * 100
		}
	case current.Distance != nil && current.TimeS != nil &&
		previous.Distance != nil && previous.TimeS != nil:
		if *current.TimeS == 0 || *previous.TimeS == 0 {
			return nil
		}
		rate := *current.Distance / float64(*current.TimeS)
		prevRate := *previous.Distance / float64(*previous.TimeS)
		if prevRate != 0 {
			change = (rate - prevRate) / prevRate * 100
		}
	case current.TimeS != nil && previous.TimeS != nil:
		if *previous.TimeS != 0 {
			change = float64(*current.TimeS-*previous.TimeS) / float64(*previous.TimeS) * 100
		}
	}

	if change == 0 {
		return nil
	}
	return &change
}
