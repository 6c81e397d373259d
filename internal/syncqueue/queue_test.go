package syncqueue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/gymlog/internal/models"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := OpenInMemory()
	if err != nil {
		t.Fatalf("opening queue: %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

// TestEnqueueFillsDefaults verifies a bare set gets a timestamp and a UUID
// client token at enqueue time, so later replays are idempotent.
func TestEnqueueFillsDefaults(t *testing.T) {
	q := newTestQueue(t)

	token, err := q.Enqueue(models.SetInput{ExerciseID: 1, Weight: fptr(80), Repetitions: iptr(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(token); err != nil {
		t.Errorf("token %q is not a UUID: %v", token, err)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d sets, want 1", len(pending))
	}
	if pending[0].Timestamp == "" {
		t.Error("timestamp was not filled in")
	}
	if pending[0].ClientToken != token {
		t.Errorf("token = %q, want %q", pending[0].ClientToken, token)
	}
}

// TestPendingRoundTrip verifies nullable payload fields survive the queue.
func TestPendingRoundTrip(t *testing.T) {
	q := newTestQueue(t)

	in := models.SetInput{
		ExerciseID:  2,
		Timestamp:   "2026-08-29T10:00:00Z",
		Distance:    fptr(5000),
		TimeS:       iptr(1500),
		Difficult:   true,
		ClientToken: "tok-row",
	}
	if _, err := q.Enqueue(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := pending[0]
	if got.Distance == nil || *got.Distance != 5000 {
		t.Errorf("distance = %v, want 5000", got.Distance)
	}
	if got.TimeS == nil || *got.TimeS != 1500 {
		t.Errorf("time_s = %v, want 1500", got.TimeS)
	}
	if got.Weight != nil || got.Repetitions != nil {
		t.Errorf("unset fields came back non-nil: %+v", got)
	}
	if !got.Difficult {
		t.Error("difficult flag lost")
	}
	if got.Timestamp != "2026-08-29T10:00:00Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
}

func TestEnqueueRejectsMalformedTimestamp(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Enqueue(models.SetInput{ExerciseID: 1, Timestamp: "yesterday-ish"})
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestEnqueueRequiresExercise(t *testing.T) {
	q := newTestQueue(t)

	if _, err := q.Enqueue(models.SetInput{Weight: fptr(80)}); err == nil {
		t.Fatal("expected error for missing exercise ID")
	}
}

// TestMarkSynced verifies accepted sets leave the queue while others stay.
func TestMarkSynced(t *testing.T) {
	q := newTestQueue(t)

	tokA, _ := q.Enqueue(models.SetInput{ExerciseID: 1, Weight: fptr(80)})
	tokB, _ := q.Enqueue(models.SetInput{ExerciseID: 1, Weight: fptr(82.5)})

	if err := q.MarkSynced([]string{tokA}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := q.Len()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("queue length = %d, want 1", n)
	}

	pending, _ := q.Pending()
	if pending[0].ClientToken != tokB {
		t.Errorf("remaining token = %q, want %q", pending[0].ClientToken, tokB)
	}
}
