package analytics

import (
	"math"
	"testing"

	"github.com/meltforce/gymlog/internal/models"
)

// TestDelta exercises the precedence chain (weight, then rate, then time)
// and the zero-change normalization to nil.
func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  models.Set
		previous models.Set
		want     *float64
	}{
		{
			name:     "weight increase",
			current:  models.Set{Weight: fptr(82.5), Repetitions: iptr(5)},
			previous: models.Set{Weight: fptr(80), Repetitions: iptr(5)},
			want:     fptr(3.125),
		},
		{
			name:     "weight decrease",
			current:  models.Set{Weight: fptr(60)},
			previous: models.Set{Weight: fptr(80)},
			want:     fptr(-25),
		},
		{
			name:     "zero previous weight",
			current:  models.Set{Weight: fptr(50)},
			previous: models.Set{Weight: fptr(0)},
			want:     nil,
		},
		{
			name:     "rate improvement",
			current:  models.Set{Distance: fptr(5000), TimeS: iptr(1200)},
			previous: models.Set{Distance: fptr(5000), TimeS: iptr(1500)},
			want:     fptr(25),
		},
		{
			name:     "time increase",
			current:  models.Set{TimeS: iptr(60)},
			previous: models.Set{TimeS: iptr(45)},
			want:     fptr(100.0 / 3),
		},
		{
			name:     "zero previous time",
			current:  models.Set{TimeS: iptr(60)},
			previous: models.Set{TimeS: iptr(0)},
			want:     nil,
		},
		{
			name:     "mismatched payloads",
			current:  models.Set{Weight: fptr(50)},
			previous: models.Set{TimeS: iptr(45)},
			want:     nil,
		},
		{
			name:     "empty payloads",
			current:  models.Set{},
			previous: models.Set{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(&tt.current, &tt.previous)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Delta = %v, want %v", got, tt.want)
			}
			if got != nil && math.Abs(*got-*tt.want) > 1e-9 {
				t.Errorf("Delta = %.6f, want %.6f", *got, *tt.want)
			}
		})
	}
}

// TestDeltaSelfIsNone verifies comparing a set against an identical one is
// normalized to no delta rather than a literal zero.
func TestDeltaSelfIsNone(t *testing.T) {
	sets := []models.Set{
		{Weight: fptr(80), Repetitions: iptr(5)},
		{Distance: fptr(5000), TimeS: iptr(1500)},
		{TimeS: iptr(45)},
	}
	for _, s := range sets {
		if got := Delta(&s, &s); got != nil {
			t.Errorf("Delta(s, s) = %v, want nil", *got)
		}
	}
}

func TestDeltaNilSets(t *testing.T) {
	s := models.Set{Weight: fptr(80)}
	if got := Delta(&s, nil); got != nil {
		t.Errorf("Delta with nil previous = %v, want nil", *got)
	}
	if got := Delta(nil, &s); got != nil {
		t.Errorf("Delta with nil current = %v, want nil", *got)
	}
}
