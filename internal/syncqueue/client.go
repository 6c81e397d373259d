package syncqueue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltforce/gymlog/internal/models"
)

// Client sends queued sets to the server's sync endpoint.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the given server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type syncPayload struct {
	Sets []models.SetInput `json:"sets"`
}

type syncResponse struct {
	Inserted int64 `json:"inserted"`
}

// SendBatch POSTs a batch of sets to the sync endpoint. Retries up to 3
// times with exponential backoff; the server deduplicates on client token,
// so resending a partially applied batch is safe.
func (c *Client) SendBatch(sets []models.SetInput) (int64, error) {
	data, err := json.Marshal(syncPayload{Sets: sets})
	if err != nil {
		return 0, fmt.Errorf("marshaling sync payload: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/sets/sync", bytes.NewReader(data))
		if err != nil {
			return 0, fmt.Errorf("building sync request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var sr syncResponse
			if err := json.Unmarshal(body, &sr); err != nil {
				return 0, fmt.Errorf("decoding sync response: %w", err)
			}
			return sr.Inserted, nil
		}
		// Auth failures won't heal on retry.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return 0, fmt.Errorf("sync rejected (status %d): %s", resp.StatusCode, body)
		}
		lastErr = fmt.Errorf("sync failed (status %d): %s", resp.StatusCode, body)
	}

	return 0, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// Sync drains the queue: sends all pending sets in batches and removes the
// ones the server accepted. Returns the number of newly inserted sets.
func (c *Client) Sync(q *Queue, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	pending, err := q.Pending()
	if err != nil {
		return 0, err
	}

	var inserted int64
	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		batch := pending[start:end]

		n, err := c.SendBatch(batch)
		if err != nil {
			return inserted, err
		}
		inserted += n

		tokens := make([]string, len(batch))
		for i, in := range batch {
			tokens[i] = in.ClientToken
		}
		if err := q.MarkSynced(tokens); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}
