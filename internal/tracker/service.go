// Package tracker composes storage reads with the analytics engine to answer
// the workout-list, exercise-detail and history queries, and owns the write
// paths for sets, exercises and workout membership.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/gymlog/internal/analytics"
	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/storage"
)

// todaysSetsScanLimit bounds the creation-order scan for today's sets. The
// log never sees more than this many sets in one day per exercise.
const todaysSetsScanLimit = 15

// Store is the persistence surface the service depends on. *storage.DB
// implements it; tests substitute a fake.
type Store interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	GetWorkout(ctx context.Context, workoutID int64) (models.Workout, error)
	CreateWorkout(ctx context.Context, name, colour string) (int64, error)
	DeleteWorkout(ctx context.Context, workoutID int64) error
	WorkoutExercises(ctx context.Context, workoutID int64) ([]models.Exercise, error)
	LatestWorkoutSet(ctx context.Context, workoutID int64) (models.Set, string, error)
	SaveWorkout(ctx context.Context, workoutID int64, name string, exerciseIDs []int64) error

	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExercise(ctx context.Context, exerciseID int64) (models.Exercise, error)
	CreateExercise(ctx context.Context, name string, kind models.ExerciseKind, notes string) (int64, error)
	UpdateExerciseNotes(ctx context.Context, exerciseID int64, notes string) error
	DeleteExercise(ctx context.Context, exerciseID int64) error

	CreateSet(ctx context.Context, in models.SetInput) (int64, error)
	SyncSets(ctx context.Context, batch []models.SetInput) (int64, error)
	UpdateSet(ctx context.Context, setID int64, upd models.SetUpdate) error
	DeleteSet(ctx context.Context, setID int64) error
	SetsByTime(ctx context.Context, exerciseID int64) ([]models.Set, error)
	RecentSetsByID(ctx context.Context, exerciseID int64, limit int) ([]models.Set, error)
	LatestSet(ctx context.Context, exerciseID int64) (models.Set, error)
	PreviousSet(ctx context.Context, exerciseID, setID int64) (models.Set, error)
}

// Service is the aggregation orchestrator. It receives its storage handle at
// construction; there is no ambient global connection.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WorkoutSummary is one row of the workout list.
type WorkoutSummary struct {
	WorkoutID     int64  `json:"workoutID"`
	Name          string `json:"name"`
	Colour        string `json:"colour"`
	ExerciseCount int    `json:"exerciseCount"`
	LastUpdate    string `json:"lastUpdate"`
	LastExercise  string `json:"lastExercise"`
}

// WorkoutExerciseSummary is one row of a workout's exercise list.
type WorkoutExerciseSummary struct {
	ExerciseID int64  `json:"exerciseID"`
	Name       string `json:"name"`
	LastUpdate string `json:"lastUpdate"`
	IsToday    bool   `json:"isToday"`
	LastSet    string `json:"lastSet"`
}

// WorkoutDetail is a workout plus its member exercise summaries.
type WorkoutDetail struct {
	models.Workout
	Exercises []WorkoutExerciseSummary `json:"exercises"`
}

// TodaySet is one of today's sets, formatted for display and editing.
type TodaySet struct {
	UID          int64    `json:"uid"`
	Timestamp    string   `json:"timestamp"`
	ReadableTime string   `json:"readableTime"`
	Detail       string   `json:"detail"`
	Distance     *float64 `json:"distance,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Hours        *int     `json:"hours,omitempty"`
	Mins         *int     `json:"mins,omitempty"`
	Seconds      *int     `json:"seconds,omitempty"`
	Repetitions  *int     `json:"repetitions,omitempty"`
	Delta        *float64 `json:"delta,omitempty"`
	Difficult    bool     `json:"difficult"`
}

// ExerciseDetail is everything the exercise page needs.
type ExerciseDetail struct {
	models.Exercise
	TodaySets []TodaySet                       `json:"todaySets"`
	History   map[int][]analytics.HistoryPoint `json:"history"`
	Stats     analytics.ExerciseStats          `json:"stats"`
}

// ListWorkouts returns every workout with its exercise count and the name
// and relative age of the most recent set across all member exercises.
func (s *Service) ListWorkouts(ctx context.Context) ([]WorkoutSummary, error) {
	workouts, err := s.store.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	now := s.now()
	result := make([]WorkoutSummary, 0, len(workouts))
	for _, w := range workouts {
		exercises, err := s.store.WorkoutExercises(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("listing exercises for workout %d: %w", w.ID, err)
		}

		summary := WorkoutSummary{
			WorkoutID:     w.ID,
			Name:          w.Name,
			Colour:        w.Colour,
			ExerciseCount: len(exercises),
			LastUpdate:    "Never",
		}

		latest, exerciseName, err := s.store.LatestWorkoutSet(ctx, w.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// No member exercise has logged a set yet.
		case err != nil:
			return nil, fmt.Errorf("finding latest set for workout %d: %w", w.ID, err)
		default:
			relative, err := analytics.RelativeTime(latest.Timestamp, now)
			if err != nil {
				return nil, err
			}
			summary.LastUpdate = relative
			summary.LastExercise = exerciseName
		}

		result = append(result, summary)
	}
	return result, nil
}

// GetWorkoutDetail returns a workout and, for each member exercise, a
// one-line summary of its most recent activity.
func (s *Service) GetWorkoutDetail(ctx context.Context, workoutID int64) (WorkoutDetail, error) {
	workout, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return WorkoutDetail{}, err
	}

	exercises, err := s.store.WorkoutExercises(ctx, workoutID)
	if err != nil {
		return WorkoutDetail{}, fmt.Errorf("listing exercises for workout %d: %w", workoutID, err)
	}

	now := s.now()
	detail := WorkoutDetail{Workout: workout, Exercises: make([]WorkoutExerciseSummary, 0, len(exercises))}
	for _, e := range exercises {
		summary := WorkoutExerciseSummary{
			ExerciseID: e.ID,
			Name:       e.Name,
			LastUpdate: "Never",
		}

		latest, err := s.store.LatestSet(ctx, e.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return WorkoutDetail{}, fmt.Errorf("finding latest set for exercise %d: %w", e.ID, err)
		default:
			relative, err := analytics.RelativeTime(latest.Timestamp, now)
			if err != nil {
				return WorkoutDetail{}, err
			}
			today, err := analytics.IsToday(latest.Timestamp, now)
			if err != nil {
				return WorkoutDetail{}, err
			}
			summary.LastUpdate = relative
			summary.IsToday = today
			summary.LastSet = analytics.SetSummary(latest)
		}

		detail.Exercises = append(detail.Exercises, summary)
	}
	return detail, nil
}

// TodaysSets returns today's sets for an exercise in descending creation
// order, each with a delta against its immediate predecessor.
func (s *Service) TodaysSets(ctx context.Context, exerciseID int64) ([]TodaySet, error) {
	sets, err := s.store.RecentSetsByID(ctx, exerciseID, todaysSetsScanLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recent sets for exercise %d: %w", exerciseID, err)
	}

	now := s.now()
	result := make([]TodaySet, 0, len(sets))
	for _, set := range sets {
		today, err := analytics.IsToday(set.Timestamp, now)
		if err != nil {
			return nil, err
		}
		if !today {
			continue
		}

		relative, err := analytics.RelativeTime(set.Timestamp, now)
		if err != nil {
			return nil, err
		}

		var delta *float64
		previous, err := s.store.PreviousSet(ctx, exerciseID, set.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// First set ever: no delta.
		case err != nil:
			return nil, fmt.Errorf("finding previous set for %d: %w", set.ID, err)
		default:
			delta = analytics.Delta(&set, &previous)
		}

		hours, mins, seconds := splitClock(set.TimeS)
		result = append(result, TodaySet{
			UID:          set.ID,
			Timestamp:    set.Timestamp,
			ReadableTime: relative,
			Detail:       analytics.SetSummary(set),
			Distance:     set.Distance,
			Weight:       set.Weight,
			Hours:        hours,
			Mins:         mins,
			Seconds:      seconds,
			Repetitions:  set.Repetitions,
			Delta:        delta,
			Difficult:    set.Difficult,
		})
	}
	return result, nil
}

// ExerciseHistory returns the day-bucketed, min-max-scaled history series
// for charting. maxBuckets <= 0 selects the default of 25.
func (s *Service) ExerciseHistory(ctx context.Context, exerciseID int64, maxBuckets int) (map[int][]analytics.HistoryPoint, error) {
	exercise, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.SetsByTime(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("listing sets for exercise %d: %w", exerciseID, err)
	}
	return analytics.History(sets, exercise.Kind, maxBuckets, s.now())
}

// ExerciseStats returns the headline statistics for an exercise.
func (s *Service) ExerciseStats(ctx context.Context, exerciseID int64) (analytics.ExerciseStats, error) {
	exercise, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return analytics.ExerciseStats{}, err
	}
	sets, err := s.store.SetsByTime(ctx, exerciseID)
	if err != nil {
		return analytics.ExerciseStats{}, fmt.Errorf("listing sets for exercise %d: %w", exerciseID, err)
	}
	return analytics.Stats(sets, exercise.Kind, s.now())
}

// GetExerciseDetail composes the full exercise page: metadata, today's sets,
// the history series and the stat summary.
func (s *Service) GetExerciseDetail(ctx context.Context, exerciseID int64) (ExerciseDetail, error) {
	exercise, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return ExerciseDetail{}, err
	}

	todaySets, err := s.TodaysSets(ctx, exerciseID)
	if err != nil {
		return ExerciseDetail{}, err
	}

	sets, err := s.store.SetsByTime(ctx, exerciseID)
	if err != nil {
		return ExerciseDetail{}, fmt.Errorf("listing sets for exercise %d: %w", exerciseID, err)
	}

	now := s.now()
	history, err := analytics.History(sets, exercise.Kind, analytics.DefaultHistoryBuckets, now)
	if err != nil {
		return ExerciseDetail{}, err
	}
	stats, err := analytics.Stats(sets, exercise.Kind, now)
	if err != nil {
		return ExerciseDetail{}, err
	}

	return ExerciseDetail{
		Exercise:  exercise,
		TodaySets: todaySets,
		History:   history,
		Stats:     stats,
	}, nil
}

// SaveSet persists a new set. A missing timestamp falls back to the current
// UTC instant at second precision, a missing client token to a fresh UUID.
func (s *Service) SaveSet(ctx context.Context, in models.SetInput) (int64, error) {
	if in.Timestamp == "" {
		in.Timestamp = analytics.FormatTimestamp(s.now())
	} else if _, err := analytics.ParseTimestamp(in.Timestamp); err != nil {
		return 0, err
	}
	if in.ClientToken == "" {
		in.ClientToken = uuid.NewString()
	}
	return s.store.CreateSet(ctx, in)
}

// SyncOfflineSets merges a batch of offline-created sets. Candidates whose
// client token is already persisted are silently skipped; replaying a batch
// is idempotent. Returns the number of sets newly applied.
func (s *Service) SyncOfflineSets(ctx context.Context, batch []models.SetInput) (int64, error) {
	for i := range batch {
		if batch[i].Timestamp == "" {
			batch[i].Timestamp = analytics.FormatTimestamp(s.now())
		} else if _, err := analytics.ParseTimestamp(batch[i].Timestamp); err != nil {
			return 0, err
		}
		if batch[i].ClientToken == "" {
			batch[i].ClientToken = uuid.NewString()
		}
	}
	return s.store.SyncSets(ctx, batch)
}

// UpdateSet replaces a set's payload fields. Timestamp and identity are
// immutable once created.
func (s *Service) UpdateSet(ctx context.Context, setID int64, upd models.SetUpdate) error {
	return s.store.UpdateSet(ctx, setID, upd)
}

// DeleteSet removes a single set.
func (s *Service) DeleteSet(ctx context.Context, setID int64) error {
	return s.store.DeleteSet(ctx, setID)
}

// ListExercises returns every exercise, name-sorted, for the workout editor.
func (s *Service) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return s.store.ListExercises(ctx)
}

// NewExercise creates an exercise. The kind is fixed for the exercise's
// lifetime.
func (s *Service) NewExercise(ctx context.Context, name string, kind models.ExerciseKind, notes string) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown exercise kind %q", kind)
	}
	return s.store.CreateExercise(ctx, name, kind, notes)
}

// UpdateExerciseNotes replaces an exercise's free-text notes.
func (s *Service) UpdateExerciseNotes(ctx context.Context, exerciseID int64, notes string) error {
	return s.store.UpdateExerciseNotes(ctx, exerciseID, notes)
}

// DeleteExercise removes an exercise with its sets and workout memberships.
func (s *Service) DeleteExercise(ctx context.Context, exerciseID int64) error {
	return s.store.DeleteExercise(ctx, exerciseID)
}

// NewWorkout creates a workout with a name and display colour.
func (s *Service) NewWorkout(ctx context.Context, name, colour string) (int64, error) {
	if colour == "" {
		colour = "#000"
	}
	return s.store.CreateWorkout(ctx, name, colour)
}

// SaveWorkout renames a workout and reconciles its membership to the
// desired exercise IDs. The diff is applied atomically by the store.
func (s *Service) SaveWorkout(ctx context.Context, workoutID int64, name string, exerciseIDs []int64) error {
	return s.store.SaveWorkout(ctx, workoutID, name, exerciseIDs)
}

// DeleteWorkout removes a workout and its membership rows.
func (s *Service) DeleteWorkout(ctx context.Context, workoutID int64) error {
	return s.store.DeleteWorkout(ctx, workoutID)
}

// splitClock decomposes seconds into hour/minute/second components for the
// set edit form. Zero components are omitted, matching the display layer's
// expectations.
func splitClock(timeS *int) (hours, mins, seconds *int) {
	if timeS == nil {
		return nil, nil, nil
	}
	h := *timeS / 3600
	m := *timeS % 3600 / 60
	sec := *timeS % 60
	if h != 0 {
		hours = &h
	}
	if m != 0 {
		mins = &m
	}
	if sec != 0 {
		seconds = &sec
	}
	return hours, mins, seconds
}
