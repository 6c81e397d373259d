package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/gymlog/internal/models"
)

const setColumns = `uid, exercise_id, ts, distance_m, weight_kg, time_s,
	repetitions, difficult, client_token`

// CreateSet inserts a new set and returns its monotonic ID. The unique
// constraint on client_token surfaces as an error here; use SyncSets for the
// skip-on-duplicate merge path.
func (db *DB) CreateSet(ctx context.Context, in models.SetInput) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO sets (exercise_id, ts, distance_m, weight_kg, time_s, repetitions, difficult, client_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING uid`,
		in.ExerciseID, in.Timestamp, in.Distance, in.Weight, in.TimeS,
		in.Repetitions, in.Difficult, in.ClientToken).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting set: %w", err)
	}
	return id, nil
}

// SyncSets merges a batch of offline-created sets inside one transaction.
// Candidates whose client token already exists are skipped via ON CONFLICT,
// so replaying the same batch is idempotent; any other failure aborts the
// whole batch. Returns the number of sets actually inserted.
func (db *DB) SyncSets(ctx context.Context, batch []models.SetInput) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning sync tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, in := range batch {
		tag, err := tx.Exec(ctx,
			`INSERT INTO sets (exercise_id, ts, distance_m, weight_kg, time_s, repetitions, difficult, client_token)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (client_token) DO NOTHING`,
			in.ExerciseID, in.Timestamp, in.Distance, in.Weight, in.TimeS,
			in.Repetitions, in.Difficult, in.ClientToken)
		if err != nil {
			return 0, fmt.Errorf("syncing set %q: %w", in.ClientToken, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing sync: %w", err)
	}
	return inserted, nil
}

// UpdateSet replaces the payload fields of a set. Timestamp and identity
// are immutable.
func (db *DB) UpdateSet(ctx context.Context, setID int64, upd models.SetUpdate) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sets SET distance_m = $1, weight_kg = $2, time_s = $3,
		        repetitions = $4, difficult = $5
		 WHERE uid = $6`,
		upd.Distance, upd.Weight, upd.TimeS, upd.Repetitions, upd.Difficult, setID)
	if err != nil {
		return fmt.Errorf("updating set %d: %w", setID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating set %d: %w", setID, ErrNotFound)
	}
	return nil
}

// DeleteSet removes a single set.
func (db *DB) DeleteSet(ctx context.Context, setID int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sets WHERE uid = $1`, setID)
	if err != nil {
		return fmt.Errorf("deleting set %d: %w", setID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting set %d: %w", setID, ErrNotFound)
	}
	return nil
}

// SetsByTime returns all sets for an exercise in descending timestamp order,
// the ordering the history and stats scans expect.
func (db *DB) SetsByTime(ctx context.Context, exerciseID int64) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM sets WHERE exercise_id = $1 ORDER BY ts DESC`,
		exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by time: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// RecentSetsByID returns the most recent sets for an exercise in descending
// creation order, capped at limit.
func (db *DB) RecentSetsByID(ctx context.Context, exerciseID int64, limit int) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM sets WHERE exercise_id = $1 ORDER BY uid DESC LIMIT $2`,
		exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// LatestSet returns the most recent set for an exercise by timestamp, or
// ErrNotFound when the exercise has no sets yet.
func (db *DB) LatestSet(ctx context.Context, exerciseID int64) (models.Set, error) {
	var s models.Set
	err := db.Pool.QueryRow(ctx,
		`SELECT `+setColumns+` FROM sets WHERE exercise_id = $1 ORDER BY ts DESC LIMIT 1`,
		exerciseID).Scan(&s.ID, &s.ExerciseID, &s.Timestamp, &s.Distance, &s.Weight,
		&s.TimeS, &s.Repetitions, &s.Difficult, &s.ClientToken)
	if err != nil {
		return models.Set{}, notFound(err)
	}
	return s, nil
}

// PreviousSet returns the set immediately preceding setID in creation order
// for the same exercise, or ErrNotFound when none exists.
func (db *DB) PreviousSet(ctx context.Context, exerciseID, setID int64) (models.Set, error) {
	var s models.Set
	err := db.Pool.QueryRow(ctx,
		`SELECT `+setColumns+` FROM sets
		 WHERE exercise_id = $1 AND uid < $2
		 ORDER BY uid DESC LIMIT 1`,
		exerciseID, setID).Scan(&s.ID, &s.ExerciseID, &s.Timestamp, &s.Distance,
		&s.Weight, &s.TimeS, &s.Repetitions, &s.Difficult, &s.ClientToken)
	if err != nil {
		return models.Set{}, notFound(err)
	}
	return s, nil
}

func scanSets(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Set, error) {
	var result []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.ExerciseID, &s.Timestamp, &s.Distance, &s.Weight,
			&s.TimeS, &s.Repetitions, &s.Difficult, &s.ClientToken); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
