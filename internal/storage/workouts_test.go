package storage

import (
	"slices"
	"testing"
)

// TestDiffMembership verifies the symmetric-difference partition used by
// SaveWorkout: desired-only IDs are added, current-only IDs removed, shared
// IDs untouched.
func TestDiffMembership(t *testing.T) {
	tests := []struct {
		name        string
		current     []int64
		desired     []int64
		wantAdded   []int64
		wantRemoved []int64
	}{
		{
			name:        "swap one exercise",
			current:     []int64{2, 4},
			desired:     []int64{1, 2},
			wantAdded:   []int64{1},
			wantRemoved: []int64{4},
		},
		{
			name:    "no change",
			current: []int64{1, 2, 3},
			desired: []int64{3, 2, 1},
		},
		{
			name:      "all new",
			current:   nil,
			desired:   []int64{5, 6},
			wantAdded: []int64{5, 6},
		},
		{
			name:        "all removed",
			current:     []int64{5, 6},
			desired:     nil,
			wantRemoved: []int64{5, 6},
		},
		{
			name:      "duplicate desired IDs added once",
			current:   []int64{1},
			desired:   []int64{1, 2, 2},
			wantAdded: []int64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := diffMembership(tt.current, tt.desired)
			if !slices.Equal(added, tt.wantAdded) {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
			if !slices.Equal(removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", removed, tt.wantRemoved)
			}
		})
	}
}
