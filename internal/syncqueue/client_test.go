package syncqueue

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/gymlog/internal/models"
)

// TestSendBatch verifies the batch reaches the sync endpoint with the API
// key header and the inserted count comes back.
func TestSendBatch(t *testing.T) {
	var gotKey string
	var gotPayload syncPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sets/sync" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode error: %v", err)
		}
		json.NewEncoder(w).Encode(syncResponse{Inserted: 2})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	inserted, err := c.SendBatch([]models.SetInput{
		{ExerciseID: 1, ClientToken: "tok-a"},
		{ExerciseID: 1, ClientToken: "tok-b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want %q", gotKey, "secret")
	}
	if len(gotPayload.Sets) != 2 || gotPayload.Sets[1].ClientToken != "tok-b" {
		t.Errorf("payload = %+v", gotPayload)
	}
}

// TestSendBatchAuthFailureNoRetry verifies a 403 fails immediately instead
// of burning retries on a key that will never work.
func TestSendBatchAuthFailureNoRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong")
	if _, err := c.SendBatch([]models.SetInput{{ExerciseID: 1}}); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

// TestSyncDrainsQueue verifies a successful sync empties the local queue.
func TestSyncDrainsQueue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p syncPayload
		json.NewDecoder(r.Body).Decode(&p)
		json.NewEncoder(w).Encode(syncResponse{Inserted: int64(len(p.Sets))})
	}))
	defer srv.Close()

	q := newTestQueue(t)
	for i := 0; i < 3; i++ {
		if _, err := q.Enqueue(models.SetInput{ExerciseID: 1, Weight: fptr(80)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	c := NewClient(srv.URL, "secret")
	inserted, err := c.Sync(q, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}

	n, _ := q.Len()
	if n != 0 {
		t.Errorf("queue length after sync = %d, want 0", n)
	}
}

// TestSyncKeepsUnsentOnFailure verifies sets stay queued when the server is
// unreachable, so a later sync can retry them.
func TestSyncKeepsUnsentOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	q := newTestQueue(t)
	if _, err := q.Enqueue(models.SetInput{ExerciseID: 1, Weight: fptr(80)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	c := NewClient(srv.URL, "wrong")
	if _, err := c.Sync(q, 10); err == nil {
		t.Fatal("expected error")
	}

	n, _ := q.Len()
	if n != 1 {
		t.Errorf("queue length = %d, want 1", n)
	}
}
