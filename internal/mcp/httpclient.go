package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/gymlog/internal/analytics"
	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/tracker"
)

// HTTPClient implements DataSource by calling the GymLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]tracker.WorkoutSummary, error) {
	body, err := c.get(ctx, "/api/v1/workouts", nil)
	if err != nil {
		return nil, err
	}

	var workouts []tracker.WorkoutSummary
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkoutDetail(ctx context.Context, workoutID int64) (tracker.WorkoutDetail, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+strconv.FormatInt(workoutID, 10), nil)
	if err != nil {
		return tracker.WorkoutDetail{}, err
	}

	var detail tracker.WorkoutDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return tracker.WorkoutDetail{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return detail, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ExerciseStats(ctx context.Context, exerciseID int64) (analytics.ExerciseStats, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+strconv.FormatInt(exerciseID, 10)+"/stats", nil)
	if err != nil {
		return analytics.ExerciseStats{}, err
	}

	var stats analytics.ExerciseStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return analytics.ExerciseStats{}, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return stats, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, exerciseID int64, maxBuckets int) (map[int][]analytics.HistoryPoint, error) {
	params := url.Values{}
	if maxBuckets > 0 {
		params.Set("buckets", strconv.Itoa(maxBuckets))
	}

	body, err := c.get(ctx, "/api/v1/exercises/"+strconv.FormatInt(exerciseID, 10)+"/history", params)
	if err != nil {
		return nil, err
	}

	var history map[int][]analytics.HistoryPoint
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return history, nil
}

func (c *HTTPClient) TodaysSets(ctx context.Context, exerciseID int64) ([]tracker.TodaySet, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+strconv.FormatInt(exerciseID, 10)+"/today", nil)
	if err != nil {
		return nil, err
	}

	var sets []tracker.TodaySet
	if err := json.Unmarshal(body, &sets); err != nil {
		return nil, fmt.Errorf("httpclient: decode todays sets: %w", err)
	}
	return sets, nil
}
