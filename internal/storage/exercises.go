package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/gymlog/internal/models"
)

// ListExercises returns every exercise ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, name, kind, COALESCE(notes, '')
		 FROM exercise ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// GetExercise retrieves a single exercise by ID.
func (db *DB) GetExercise(ctx context.Context, exerciseID int64) (models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT exercise_id, name, kind, COALESCE(notes, '')
		 FROM exercise WHERE exercise_id = $1`,
		exerciseID).Scan(&e.ID, &e.Name, &e.Kind, &e.Notes)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise %d: %w", exerciseID, notFound(err))
	}
	return e, nil
}

// CreateExercise inserts a new exercise and returns its ID.
func (db *DB) CreateExercise(ctx context.Context, name string, kind models.ExerciseKind, notes string) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercise (name, kind, notes) VALUES ($1, $2, $3) RETURNING exercise_id`,
		name, kind, notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting exercise: %w", err)
	}
	return id, nil
}

// UpdateExerciseNotes replaces the free-text notes of an exercise.
func (db *DB) UpdateExerciseNotes(ctx context.Context, exerciseID int64, notes string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercise SET notes = $1 WHERE exercise_id = $2`, notes, exerciseID)
	if err != nil {
		return fmt.Errorf("updating exercise %d notes: %w", exerciseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating exercise %d notes: %w", exerciseID, ErrNotFound)
	}
	return nil
}

// DeleteExercise removes an exercise. Its sets and workout memberships
// cascade; the delete is irrecoverable.
func (db *DB) DeleteExercise(ctx context.Context, exerciseID int64) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercise WHERE exercise_id = $1`, exerciseID)
	if err != nil {
		return fmt.Errorf("deleting exercise %d: %w", exerciseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting exercise %d: %w", exerciseID, ErrNotFound)
	}
	return nil
}

func scanExercises(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
