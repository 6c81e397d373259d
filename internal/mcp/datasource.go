package mcp

import (
	"context"

	"github.com/meltforce/gymlog/internal/analytics"
	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/tracker"
)

// DataSource abstracts the tracker layer for MCP tools.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]tracker.WorkoutSummary, error)
	GetWorkoutDetail(ctx context.Context, workoutID int64) (tracker.WorkoutDetail, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ExerciseStats(ctx context.Context, exerciseID int64) (analytics.ExerciseStats, error)
	ExerciseHistory(ctx context.Context, exerciseID int64, maxBuckets int) (map[int][]analytics.HistoryPoint, error)
	TodaysSets(ctx context.Context, exerciseID int64) ([]tracker.TodaySet, error)
}

// Compile-time check: *tracker.Service satisfies DataSource.
var _ DataSource = (*tracker.Service)(nil)
