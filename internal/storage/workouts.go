package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/gymlog/internal/models"
)

// ListWorkouts returns all workouts ordered by name.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT workout_id, name, colour FROM workout ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Colour); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, workoutID int64) (models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT workout_id, name, colour FROM workout WHERE workout_id = $1`,
		workoutID).Scan(&w.ID, &w.Name, &w.Colour)
	if err != nil {
		return models.Workout{}, fmt.Errorf("querying workout %d: %w", workoutID, notFound(err))
	}
	return w, nil
}

// CreateWorkout inserts a new workout and returns its ID.
func (db *DB) CreateWorkout(ctx context.Context, name, colour string) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workout (name, colour) VALUES ($1, $2) RETURNING workout_id`,
		name, colour).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting workout: %w", err)
	}
	return id, nil
}

// DeleteWorkout removes a workout. Its membership rows cascade.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID int64) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout WHERE workout_id = $1`, workoutID)
	if err != nil {
		return fmt.Errorf("deleting workout %d: %w", workoutID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting workout %d: %w", workoutID, ErrNotFound)
	}
	return nil
}

// WorkoutExercises returns the member exercises of a workout, ordered by name.
func (db *DB) WorkoutExercises(ctx context.Context, workoutID int64) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.exercise_id, e.name, e.kind, COALESCE(e.notes, '')
		 FROM workout_exercise we
		 JOIN exercise e ON e.exercise_id = we.exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY e.name ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// LatestWorkoutSet returns the most recent set across all of a workout's
// member exercises together with the owning exercise's name. Returns
// ErrNotFound when no member exercise has any sets.
func (db *DB) LatestWorkoutSet(ctx context.Context, workoutID int64) (models.Set, string, error) {
	var s models.Set
	var name string
	err := db.Pool.QueryRow(ctx,
		`SELECT s.uid, s.exercise_id, s.ts, s.distance_m, s.weight_kg, s.time_s,
		        s.repetitions, s.difficult, s.client_token, e.name
		 FROM sets s
		 JOIN exercise e ON e.exercise_id = s.exercise_id
		 WHERE s.exercise_id IN (
		   SELECT exercise_id FROM workout_exercise WHERE workout_id = $1
		 )
		 ORDER BY s.ts DESC
		 LIMIT 1`,
		workoutID).Scan(&s.ID, &s.ExerciseID, &s.Timestamp, &s.Distance, &s.Weight,
		&s.TimeS, &s.Repetitions, &s.Difficult, &s.ClientToken, &name)
	if err != nil {
		return models.Set{}, "", notFound(err)
	}
	return s, name, nil
}

// SaveWorkout renames a workout and reconciles its exercise membership to
// the desired ID set. The current membership is read, diffed and applied
// inside one transaction so concurrent saves of the same workout cannot
// interleave.
func (db *DB) SaveWorkout(ctx context.Context, workoutID int64, name string, exerciseIDs []int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save workout tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE workout SET name = $1 WHERE workout_id = $2`, name, workoutID)
	if err != nil {
		return fmt.Errorf("updating workout %d: %w", workoutID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating workout %d: %w", workoutID, ErrNotFound)
	}

	rows, err := tx.Query(ctx,
		`SELECT exercise_id FROM workout_exercise WHERE workout_id = $1`, workoutID)
	if err != nil {
		return fmt.Errorf("querying current membership: %w", err)
	}
	var current []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning membership: %w", err)
		}
		current = append(current, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	added, removed := diffMembership(current, exerciseIDs)

	for _, exerciseID := range added {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workout_exercise (workout_id, exercise_id) VALUES ($1, $2)`,
			workoutID, exerciseID); err != nil {
			return fmt.Errorf("adding exercise %d to workout %d: %w", exerciseID, workoutID, err)
		}
	}
	for _, exerciseID := range removed {
		if _, err := tx.Exec(ctx,
			`DELETE FROM workout_exercise WHERE workout_id = $1 AND exercise_id = $2`,
			workoutID, exerciseID); err != nil {
			return fmt.Errorf("removing exercise %d from workout %d: %w", exerciseID, workoutID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save workout: %w", err)
	}
	return nil
}

// diffMembership partitions desired against current into the IDs to insert
// and the IDs to delete. IDs present in both are untouched.
func diffMembership(current, desired []int64) (added, removed []int64) {
	currentSet := make(map[int64]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[int64]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for _, id := range desired {
		if !currentSet[id] {
			added = append(added, id)
			currentSet[id] = true // dedupe repeated desired IDs
		}
	}
	for _, id := range current {
		if !desiredSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
