package models

// ExerciseKind determines which fields of a Set are meaningful and how
// summaries, deltas and history scaling are computed. Fixed at exercise
// creation; changing it would invalidate historical interpretation.
type ExerciseKind string

const (
	WeightRepetitions ExerciseKind = "weight-repetitions"
	DistanceTime      ExerciseKind = "distance-time"
	Time              ExerciseKind = "time"
)

// Valid reports whether k is one of the known exercise kinds.
func (k ExerciseKind) Valid() bool {
	switch k {
	case WeightRepetitions, DistanceTime, Time:
		return true
	}
	return false
}

// Exercise is a named, typed activity that sets are logged against.
type Exercise struct {
	ID    int64        `json:"exerciseID"`
	Name  string       `json:"name"`
	Kind  ExerciseKind `json:"kind"`
	Notes string       `json:"notes,omitempty"`
}

// Workout is a named, coloured group of exercises.
type Workout struct {
	ID     int64  `json:"workoutID"`
	Name   string `json:"name"`
	Colour string `json:"colour"`
}

// Set is one logged performance instance for an exercise. Exactly one
// payload shape is expected to be populated, consistent with the owning
// exercise's kind, but consumers must tolerate incomplete payloads.
type Set struct {
	ID          int64    `json:"uid"`
	ExerciseID  int64    `json:"exerciseID"`
	Timestamp   string   `json:"timestamp"`
	Distance    *float64 `json:"distance,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	TimeS       *int     `json:"time_s,omitempty"`
	Repetitions *int     `json:"repetitions,omitempty"`
	Difficult   bool     `json:"difficult"`
	ClientToken string   `json:"clientToken,omitempty"`
}

// SetInput is the payload for creating a set. Timestamp and ClientToken may
// be empty; the service fills in a current UTC timestamp and a fresh UUID.
type SetInput struct {
	ExerciseID  int64    `json:"exerciseID"`
	Timestamp   string   `json:"timestamp"`
	Distance    *float64 `json:"distance,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	TimeS       *int     `json:"time_s,omitempty"`
	Repetitions *int     `json:"repetitions,omitempty"`
	Difficult   bool     `json:"difficult"`
	ClientToken string   `json:"clientToken"`
}

// SetUpdate carries the editable payload fields of a set. Timestamp and
// identity are immutable once created.
type SetUpdate struct {
	Distance    *float64 `json:"distance,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	TimeS       *int     `json:"time_s,omitempty"`
	Repetitions *int     `json:"repetitions,omitempty"`
	Difficult   bool     `json:"difficult"`
}
