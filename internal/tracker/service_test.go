package tracker

import (
	"context"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/storage"
)

var testNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

// fakeStore is an in-memory Store for orchestrator tests.
type fakeStore struct {
	workouts  map[int64]models.Workout
	members   map[int64][]int64
	exercises map[int64]models.Exercise
	sets      []models.Set // ascending by ID
	nextSetID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workouts:  make(map[int64]models.Workout),
		members:   make(map[int64][]int64),
		exercises: make(map[int64]models.Exercise),
		nextSetID: 1,
	}
}

func (f *fakeStore) ListWorkouts(_ context.Context) ([]models.Workout, error) {
	var result []models.Workout
	for _, w := range f.workouts {
		result = append(result, w)
	}
	slices.SortFunc(result, func(a, b models.Workout) int {
		if a.Name < b.Name {
			return -1
		}
		return 1
	})
	return result, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id int64) (models.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return models.Workout{}, storage.ErrNotFound
	}
	return w, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, name, colour string) (int64, error) {
	id := int64(len(f.workouts) + 1)
	f.workouts[id] = models.Workout{ID: id, Name: name, Colour: colour}
	return id, nil
}

func (f *fakeStore) DeleteWorkout(_ context.Context, id int64) error {
	if _, ok := f.workouts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.workouts, id)
	delete(f.members, id)
	return nil
}

func (f *fakeStore) WorkoutExercises(_ context.Context, workoutID int64) ([]models.Exercise, error) {
	var result []models.Exercise
	for _, exerciseID := range f.members[workoutID] {
		result = append(result, f.exercises[exerciseID])
	}
	return result, nil
}

func (f *fakeStore) LatestWorkoutSet(_ context.Context, workoutID int64) (models.Set, string, error) {
	var latest *models.Set
	for i := range f.sets {
		s := &f.sets[i]
		if !slices.Contains(f.members[workoutID], s.ExerciseID) {
			continue
		}
		if latest == nil || s.Timestamp > latest.Timestamp {
			latest = s
		}
	}
	if latest == nil {
		return models.Set{}, "", storage.ErrNotFound
	}
	return *latest, f.exercises[latest.ExerciseID].Name, nil
}

func (f *fakeStore) SaveWorkout(_ context.Context, workoutID int64, name string, exerciseIDs []int64) error {
	w, ok := f.workouts[workoutID]
	if !ok {
		return storage.ErrNotFound
	}
	w.Name = name
	f.workouts[workoutID] = w
	f.members[workoutID] = slices.Clone(exerciseIDs)
	return nil
}

func (f *fakeStore) ListExercises(_ context.Context) ([]models.Exercise, error) {
	var result []models.Exercise
	for _, e := range f.exercises {
		result = append(result, e)
	}
	return result, nil
}

func (f *fakeStore) GetExercise(_ context.Context, id int64) (models.Exercise, error) {
	e, ok := f.exercises[id]
	if !ok {
		return models.Exercise{}, storage.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) CreateExercise(_ context.Context, name string, kind models.ExerciseKind, notes string) (int64, error) {
	id := int64(len(f.exercises) + 1)
	f.exercises[id] = models.Exercise{ID: id, Name: name, Kind: kind, Notes: notes}
	return id, nil
}

func (f *fakeStore) UpdateExerciseNotes(_ context.Context, id int64, notes string) error {
	e, ok := f.exercises[id]
	if !ok {
		return storage.ErrNotFound
	}
	e.Notes = notes
	f.exercises[id] = e
	return nil
}

func (f *fakeStore) DeleteExercise(_ context.Context, id int64) error {
	if _, ok := f.exercises[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.exercises, id)
	for workoutID, ids := range f.members {
		f.members[workoutID] = slices.DeleteFunc(ids, func(m int64) bool { return m == id })
	}
	f.sets = slices.DeleteFunc(f.sets, func(s models.Set) bool { return s.ExerciseID == id })
	return nil
}

func (f *fakeStore) CreateSet(_ context.Context, in models.SetInput) (int64, error) {
	for _, s := range f.sets {
		if s.ClientToken == in.ClientToken {
			return 0, fmt.Errorf("duplicate client token %q", in.ClientToken)
		}
	}
	id := f.nextSetID
	f.nextSetID++
	f.sets = append(f.sets, models.Set{
		ID: id, ExerciseID: in.ExerciseID, Timestamp: in.Timestamp,
		Distance: in.Distance, Weight: in.Weight, TimeS: in.TimeS,
		Repetitions: in.Repetitions, Difficult: in.Difficult, ClientToken: in.ClientToken,
	})
	return id, nil
}

func (f *fakeStore) SyncSets(ctx context.Context, batch []models.SetInput) (int64, error) {
	var inserted int64
	for _, in := range batch {
		duplicate := false
		for _, s := range f.sets {
			if s.ClientToken == in.ClientToken {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		if _, err := f.CreateSet(ctx, in); err != nil {
			return 0, err
		}
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) UpdateSet(_ context.Context, setID int64, upd models.SetUpdate) error {
	for i := range f.sets {
		if f.sets[i].ID == setID {
			f.sets[i].Distance = upd.Distance
			f.sets[i].Weight = upd.Weight
			f.sets[i].TimeS = upd.TimeS
			f.sets[i].Repetitions = upd.Repetitions
			f.sets[i].Difficult = upd.Difficult
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteSet(_ context.Context, setID int64) error {
	before := len(f.sets)
	f.sets = slices.DeleteFunc(f.sets, func(s models.Set) bool { return s.ID == setID })
	if len(f.sets) == before {
		return storage.ErrNotFound
	}
	return nil
}

func (f *fakeStore) SetsByTime(_ context.Context, exerciseID int64) ([]models.Set, error) {
	var result []models.Set
	for _, s := range f.sets {
		if s.ExerciseID == exerciseID {
			result = append(result, s)
		}
	}
	slices.SortFunc(result, func(a, b models.Set) int {
		if a.Timestamp > b.Timestamp {
			return -1
		}
		return 1
	})
	return result, nil
}

func (f *fakeStore) RecentSetsByID(_ context.Context, exerciseID int64, limit int) ([]models.Set, error) {
	var result []models.Set
	for i := len(f.sets) - 1; i >= 0 && len(result) < limit; i-- {
		if f.sets[i].ExerciseID == exerciseID {
			result = append(result, f.sets[i])
		}
	}
	return result, nil
}

func (f *fakeStore) LatestSet(ctx context.Context, exerciseID int64) (models.Set, error) {
	sets, _ := f.SetsByTime(ctx, exerciseID)
	if len(sets) == 0 {
		return models.Set{}, storage.ErrNotFound
	}
	return sets[0], nil
}

func (f *fakeStore) PreviousSet(_ context.Context, exerciseID, setID int64) (models.Set, error) {
	var prev *models.Set
	for i := range f.sets {
		s := &f.sets[i]
		if s.ExerciseID == exerciseID && s.ID < setID && (prev == nil || s.ID > prev.ID) {
			prev = s
		}
	}
	if prev == nil {
		return models.Set{}, storage.ErrNotFound
	}
	return *prev, nil
}

func newTestService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return testNow }}
}

func mustCreateSet(t *testing.T, f *fakeStore, exerciseID int64, ts string, mutate func(*models.SetInput)) int64 {
	t.Helper()
	in := models.SetInput{ExerciseID: exerciseID, Timestamp: ts, ClientToken: uuid.NewString()}
	if mutate != nil {
		mutate(&in)
	}
	id, err := f.CreateSet(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// TestListWorkouts verifies exercise counts and the latest-activity summary
// drawn from the newest set across all member exercises.
func TestListWorkouts(t *testing.T) {
	f := newFakeStore()
	f.workouts[1] = models.Workout{ID: 1, Name: "Push", Colour: "#f00"}
	f.workouts[2] = models.Workout{ID: 2, Name: "Rest", Colour: "#00f"}
	f.exercises[1] = models.Exercise{ID: 1, Name: "Bench Press", Kind: models.WeightRepetitions}
	f.exercises[2] = models.Exercise{ID: 2, Name: "Overhead Press", Kind: models.WeightRepetitions}
	f.members[1] = []int64{1, 2}

	mustCreateSet(t, f, 1, "2026-08-28T10:00:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(80), iptr(5)
	})
	mustCreateSet(t, f, 2, "2026-08-29T11:55:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(40), iptr(8)
	})

	svc := newTestService(f)
	summaries, err := svc.ListWorkouts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}

	push := summaries[0]
	if push.Name != "Push" || push.ExerciseCount != 2 {
		t.Errorf("push = %+v, want name Push with 2 exercises", push)
	}
	if push.LastUpdate != "5 mins ago" {
		t.Errorf("last update = %q, want %q", push.LastUpdate, "5 mins ago")
	}
	if push.LastExercise != "Overhead Press" {
		t.Errorf("last exercise = %q, want %q", push.LastExercise, "Overhead Press")
	}

	rest := summaries[1]
	if rest.LastUpdate != "Never" || rest.LastExercise != "" || rest.ExerciseCount != 0 {
		t.Errorf("empty workout = %+v, want Never/empty/0", rest)
	}
}

// TestGetWorkoutDetail verifies per-exercise last-activity lines, including
// the no-sets case.
func TestGetWorkoutDetail(t *testing.T) {
	f := newFakeStore()
	f.workouts[3] = models.Workout{ID: 3, Name: "Legs", Colour: "#0f0"}
	f.exercises[1] = models.Exercise{ID: 1, Name: "Squat", Kind: models.WeightRepetitions}
	f.exercises[2] = models.Exercise{ID: 2, Name: "Lunge", Kind: models.WeightRepetitions}
	f.members[3] = []int64{1, 2}

	mustCreateSet(t, f, 1, "2026-08-29T11:00:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(100), iptr(5)
	})

	svc := newTestService(f)
	detail, err := svc.GetWorkoutDetail(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Name != "Legs" || len(detail.Exercises) != 2 {
		t.Fatalf("detail = %+v, want Legs with 2 exercises", detail)
	}

	squat := detail.Exercises[0]
	if squat.LastSet != "5 x 100 kg" {
		t.Errorf("squat last set = %q, want %q", squat.LastSet, "5 x 100 kg")
	}
	if !squat.IsToday {
		t.Error("squat should be flagged today")
	}
	if squat.LastUpdate != "1 hour ago" {
		t.Errorf("squat last update = %q, want %q", squat.LastUpdate, "1 hour ago")
	}

	lunge := detail.Exercises[1]
	if lunge.LastUpdate != "Never" || lunge.LastSet != "" || lunge.IsToday {
		t.Errorf("lunge = %+v, want Never with empty summary", lunge)
	}
}

func TestGetWorkoutDetailNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.GetWorkoutDetail(context.Background(), 99); err == nil {
		t.Fatal("expected error for missing workout")
	}
}

// TestTodaysSetsDeltaChain runs the bench-press scenario: consecutive sets
// chained by creation order, with deltas against each immediate predecessor.
func TestTodaysSetsDeltaChain(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Bench Press", Kind: models.WeightRepetitions}

	// Yesterday's set participates as a delta predecessor but is not listed.
	mustCreateSet(t, f, 1, "2026-08-28T10:00:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(80), iptr(5)
	})
	mustCreateSet(t, f, 1, "2026-08-29T10:00:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(80), iptr(5)
	})
	mustCreateSet(t, f, 1, "2026-08-29T10:05:00Z", func(in *models.SetInput) {
		in.Weight, in.Repetitions = fptr(82.5), iptr(5)
	})

	svc := newTestService(f)
	sets, err := svc.TodaysSets(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 {
		t.Fatalf("today's sets = %d, want 2", len(sets))
	}

	// Descending creation order: the 82.5 kg set first.
	newest := sets[0]
	if newest.Detail != "5 x 82.5 kg" {
		t.Errorf("newest detail = %q, want %q", newest.Detail, "5 x 82.5 kg")
	}
	if newest.Delta == nil || math.Abs(*newest.Delta-3.125) > 1e-9 {
		t.Errorf("newest delta = %v, want 3.125", newest.Delta)
	}

	// Same weight as its predecessor: zero change normalizes to no delta.
	if sets[1].Delta != nil {
		t.Errorf("second delta = %v, want nil", *sets[1].Delta)
	}
}

// TestTodaysSetsFirstEver verifies the very first set has no delta.
func TestTodaysSetsFirstEver(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Plank", Kind: models.Time}
	mustCreateSet(t, f, 1, "2026-08-29T09:00:00Z", func(in *models.SetInput) {
		in.TimeS = iptr(45)
	})

	svc := newTestService(f)
	sets, err := svc.TodaysSets(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 {
		t.Fatalf("today's sets = %d, want 1", len(sets))
	}
	if sets[0].Delta != nil {
		t.Errorf("delta = %v, want nil", *sets[0].Delta)
	}
	if sets[0].Detail != "45 s" {
		t.Errorf("detail = %q, want %q", sets[0].Detail, "45 s")
	}
	if sets[0].Seconds == nil || *sets[0].Seconds != 45 || sets[0].Hours != nil || sets[0].Mins != nil {
		t.Errorf("clock split = %v/%v/%v, want nil/nil/45", sets[0].Hours, sets[0].Mins, sets[0].Seconds)
	}
}

// TestExerciseHistoryUsesDeclaredKind verifies the history series resolves
// the exercise kind before scanning sets.
func TestExerciseHistoryUsesDeclaredKind(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Rowing", Kind: models.DistanceTime}
	mustCreateSet(t, f, 1, "2026-08-29T09:00:00Z", func(in *models.SetInput) {
		in.Distance, in.TimeS = fptr(5000), iptr(1500)
	})

	svc := newTestService(f)
	history, err := svc.ExerciseHistory(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("history buckets = %d, want 1", len(history))
	}
	for _, points := range history {
		if points[0].Value != "3.33" { // 5000/1500 at 3 sig figs
			t.Errorf("value = %q, want %q", points[0].Value, "3.33")
		}
	}
}

func TestExerciseStats(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Rowing", Kind: models.DistanceTime}
	mustCreateSet(t, f, 1, "2026-08-29T09:00:00Z", func(in *models.SetInput) {
		in.Distance, in.TimeS = fptr(5000), iptr(1500)
	})

	svc := newTestService(f)
	stats, err := svc.ExerciseStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Headline != "3.3 m/s" || stats.Aggregate != "5.00 km" {
		t.Errorf("stats = %+v, want 3.3 m/s and 5.00 km", stats)
	}
}

// TestSaveSetFallbacks verifies a bare payload gets a server-side timestamp
// and client token.
func TestSaveSetFallbacks(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Plank", Kind: models.Time}

	svc := newTestService(f)
	id, err := svc.SaveSet(context.Background(), models.SetInput{ExerciseID: 1, TimeS: iptr(60)})
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}

	stored := f.sets[0]
	if stored.Timestamp != "2026-08-29T12:00:00Z" {
		t.Errorf("timestamp = %q, want fallback at now", stored.Timestamp)
	}
	if _, err := uuid.Parse(stored.ClientToken); err != nil {
		t.Errorf("client token %q is not a UUID: %v", stored.ClientToken, err)
	}
}

func TestSaveSetRejectsMalformedTimestamp(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.SaveSet(context.Background(), models.SetInput{ExerciseID: 1, Timestamp: "yesterday"})
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

// TestSyncOfflineSetsIdempotent verifies replaying a batch leaves the
// persisted collection unchanged.
func TestSyncOfflineSetsIdempotent(t *testing.T) {
	f := newFakeStore()
	f.exercises[1] = models.Exercise{ID: 1, Name: "Plank", Kind: models.Time}

	batch := []models.SetInput{
		{ExerciseID: 1, Timestamp: "2026-08-29T08:00:00Z", TimeS: iptr(45), ClientToken: "tok-a"},
		{ExerciseID: 1, Timestamp: "2026-08-29T08:05:00Z", TimeS: iptr(50), ClientToken: "tok-b"},
	}

	svc := newTestService(f)
	inserted, err := svc.SyncOfflineSets(context.Background(), slices.Clone(batch))
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 2 {
		t.Fatalf("first sync inserted = %d, want 2", inserted)
	}

	inserted, err = svc.SyncOfflineSets(context.Background(), slices.Clone(batch))
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 0 {
		t.Errorf("second sync inserted = %d, want 0", inserted)
	}
	if len(f.sets) != 2 {
		t.Errorf("persisted sets = %d, want 2", len(f.sets))
	}
}

func TestNewExerciseRejectsUnknownKind(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.NewExercise(context.Background(), "Yoga", "flexibility", ""); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestNewWorkoutDefaultColour(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	id, err := svc.NewWorkout(context.Background(), "Pull", "")
	if err != nil {
		t.Fatal(err)
	}
	if f.workouts[id].Colour != "#000" {
		t.Errorf("colour = %q, want default #000", f.workouts[id].Colour)
	}
}
