package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/gymlog/internal/analytics"
	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/tracker"
)

// Service is the call surface the handlers need. *tracker.Service
// implements it; tests substitute a stub.
type Service interface {
	ListWorkouts(ctx context.Context) ([]tracker.WorkoutSummary, error)
	GetWorkoutDetail(ctx context.Context, workoutID int64) (tracker.WorkoutDetail, error)
	NewWorkout(ctx context.Context, name, colour string) (int64, error)
	SaveWorkout(ctx context.Context, workoutID int64, name string, exerciseIDs []int64) error
	DeleteWorkout(ctx context.Context, workoutID int64) error

	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExerciseDetail(ctx context.Context, exerciseID int64) (tracker.ExerciseDetail, error)
	ExerciseHistory(ctx context.Context, exerciseID int64, maxBuckets int) (map[int][]analytics.HistoryPoint, error)
	ExerciseStats(ctx context.Context, exerciseID int64) (analytics.ExerciseStats, error)
	TodaysSets(ctx context.Context, exerciseID int64) ([]tracker.TodaySet, error)
	NewExercise(ctx context.Context, name string, kind models.ExerciseKind, notes string) (int64, error)
	UpdateExerciseNotes(ctx context.Context, exerciseID int64, notes string) error
	DeleteExercise(ctx context.Context, exerciseID int64) error

	SaveSet(ctx context.Context, in models.SetInput) (int64, error)
	UpdateSet(ctx context.Context, setID int64, upd models.SetUpdate) error
	DeleteSet(ctx context.Context, setID int64) error
	SyncOfflineSets(ctx context.Context, batch []models.SetInput) (int64, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleNewWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Put("/workouts/{id}", s.handleSaveWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)

		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleNewExercise)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Patch("/exercises/{id}", s.handleUpdateExerciseNotes)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Get("/exercises/{id}/history", s.handleExerciseHistory)
		r.Get("/exercises/{id}/stats", s.handleExerciseStats)
		r.Get("/exercises/{id}/today", s.handleTodaysSets)

		r.Post("/sets", s.handleSaveSet)
		r.Put("/sets/{id}", s.handleUpdateSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		// Offline sync requires the API key; browsers on the tailnet use
		// the open routes above.
		r.With(APIKeyAuth(s.apiKey)).Post("/sets/sync", s.handleSyncSets)
	})
}
