// Package syncqueue implements the client side of offline set logging: a
// local SQLite queue of sets recorded without connectivity, and an HTTP
// client that replays them against the server's sync endpoint. Each queued
// set carries a client token so replays are idempotent.
package syncqueue

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/gymlog/internal/analytics"
	"github.com/meltforce/gymlog/internal/models"

	_ "modernc.org/sqlite"
)

// Queue stores sets logged offline until they are synced to the server.
type Queue struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite queue database at dir/queue.db.
func Open(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir %s: %w", dir, err)
	}
	return open(filepath.Join(dir, "queue.db"))
}

// OpenInMemory opens a throwaway in-memory queue, used in tests.
func OpenInMemory() (*Queue, error) {
	return open(":memory:")
}

func open(path string) (*Queue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS pending_sets (
		client_token TEXT PRIMARY KEY,
		exercise_id  INTEGER NOT NULL,
		ts           TEXT NOT NULL,
		distance_m   REAL,
		weight_kg    REAL,
		time_s       INTEGER,
		repetitions  INTEGER,
		difficult    INTEGER NOT NULL DEFAULT 0,
		queued_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &Queue{db: db}, nil
}

// Enqueue stores a set locally and returns its client token. A missing
// timestamp is stamped with the current UTC time and a missing token gets a
// fresh UUID, so the entry is complete and replay-safe from the moment it
// is queued.
func (q *Queue) Enqueue(in models.SetInput) (string, error) {
	if in.ExerciseID == 0 {
		return "", fmt.Errorf("enqueue: exercise ID is required")
	}
	if in.Timestamp == "" {
		in.Timestamp = analytics.FormatTimestamp(time.Now().UTC())
	} else if _, err := analytics.ParseTimestamp(in.Timestamp); err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	if in.ClientToken == "" {
		in.ClientToken = uuid.NewString()
	}

	_, err := q.db.Exec(
		`INSERT INTO pending_sets (client_token, exercise_id, ts, distance_m, weight_kg, time_s, repetitions, difficult)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ClientToken, in.ExerciseID, in.Timestamp,
		in.Distance, in.Weight, in.TimeS, in.Repetitions, in.Difficult,
	)
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	return in.ClientToken, nil
}

// Pending returns all queued sets in enqueue order.
func (q *Queue) Pending() ([]models.SetInput, error) {
	rows, err := q.db.Query(
		`SELECT client_token, exercise_id, ts, distance_m, weight_kg, time_s, repetitions, difficult
		 FROM pending_sets ORDER BY queued_at, client_token`)
	if err != nil {
		return nil, fmt.Errorf("listing pending sets: %w", err)
	}
	defer rows.Close()

	var pending []models.SetInput
	for rows.Next() {
		var (
			in        models.SetInput
			distance  sql.NullFloat64
			weight    sql.NullFloat64
			timeS     sql.NullInt64
			reps      sql.NullInt64
			difficult int
		)
		if err := rows.Scan(&in.ClientToken, &in.ExerciseID, &in.Timestamp,
			&distance, &weight, &timeS, &reps, &difficult); err != nil {
			return nil, fmt.Errorf("scanning pending set: %w", err)
		}
		if distance.Valid {
			in.Distance = &distance.Float64
		}
		if weight.Valid {
			in.Weight = &weight.Float64
		}
		if timeS.Valid {
			v := int(timeS.Int64)
			in.TimeS = &v
		}
		if reps.Valid {
			v := int(reps.Int64)
			in.Repetitions = &v
		}
		in.Difficult = difficult != 0
		pending = append(pending, in)
	}
	return pending, rows.Err()
}

// MarkSynced removes queued sets whose tokens were accepted by the server.
func (q *Queue) MarkSynced(tokens []string) error {
	for _, token := range tokens {
		if _, err := q.db.Exec(`DELETE FROM pending_sets WHERE client_token = ?`, token); err != nil {
			return fmt.Errorf("removing synced set %s: %w", token, err)
		}
	}
	return nil
}

// Len returns the number of queued sets.
func (q *Queue) Len() (int, error) {
	var n int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM pending_sets`).Scan(&n)
	return n, err
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}
