package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for manager tests.
type fakeStore struct {
	open      *models.WorkoutSession
	sessions  []models.WorkoutSession
	sets      []models.WorkoutSet
	exercises map[uuid.UUID]models.Exercise
	graph     *models.RoutineGraph
	finished  []uuid.UUID

	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{exercises: make(map[uuid.UUID]models.Exercise)}
}

func (f *fakeStore) FindOpenSession(ctx context.Context, userID int) (*models.WorkoutSession, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.open == nil {
		return nil, storage.ErrNotFound
	}
	s := *f.open
	return &s, nil
}

func (f *fakeStore) InsertSession(ctx context.Context, s models.WorkoutSession) error {
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeStore) InsertSessionWithSets(ctx context.Context, s models.WorkoutSession, sets []models.WorkoutSet) error {
	f.sessions = append(f.sessions, s)
	f.sets = append(f.sets, sets...)
	return nil
}

func (f *fakeStore) FinishSession(ctx context.Context, id uuid.UUID, durationSec int64) error {
	f.finished = append(f.finished, id)
	return nil
}

func (f *fakeStore) GetRoutineGraph(ctx context.Context, id uuid.UUID) (*models.RoutineGraph, error) {
	if f.graph == nil {
		return nil, storage.ErrNotFound
	}
	return f.graph, nil
}

func (f *fakeStore) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	ex, ok := f.exercises[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &ex, nil
}

func (f *fakeStore) InsertSet(ctx context.Context, s models.WorkoutSet) error {
	f.sets = append(f.sets, s)
	return nil
}

func (f *fakeStore) DeleteSet(ctx context.Context, id uuid.UUID) error {
	for i, s := range f.sets {
		if s.ID == id {
			f.sets = append(f.sets[:i], f.sets[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) UpdateSetCompleted(ctx context.Context, id uuid.UUID, weight float64, reps int, completed bool) error {
	for i, s := range f.sets {
		if s.ID == id {
			f.sets[i].Weight = weight
			f.sets[i].Reps = reps
			f.sets[i].IsCompleted = completed
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) MaxOrderIndex(ctx context.Context, sessionID uuid.UUID) (int, error) {
	max := 0
	for _, s := range f.sets {
		if s.SessionID == sessionID && s.OrderIndex > max {
			max = s.OrderIndex
		}
	}
	return max, nil
}

// fakeTimer records Cancel calls.
type fakeTimer struct {
	cancels int
}

func (f *fakeTimer) Cancel() { f.cancels++ }

func newTestManager(store Store) (*Manager, *fakeClock) {
	m := NewManager(store, 1, discardLog())
	clock := &fakeClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	m.SetClock(clock.now)
	return m, clock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStartCreatesSession(t *testing.T) {
	store := newFakeStore()
	m, clock := newTestManager(store)

	s, err := m.Start(context.Background(), "Leg Day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Leg Day" {
		t.Errorf("name = %q, want %q", s.Name, "Leg Day")
	}
	if s.StartTime == nil || !s.StartTime.Equal(clock.t) {
		t.Error("start time should anchor to the current clock")
	}
	if len(store.sessions) != 1 {
		t.Fatalf("stored %d sessions, want 1", len(store.sessions))
	}
	if m.Active() == nil {
		t.Error("manager should hold an active session")
	}
}

// TestStartRejectsSecondSession verifies the single-open-session rule: a
// second Start fails and leaves both the active session and the store
// untouched.
func TestStartRejectsSecondSession(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(store)

	first, err := m.Start(context.Background(), "Morning")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = m.Start(context.Background(), "Evening")
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err = %v, want ErrSessionActive", err)
	}
	if len(store.sessions) != 1 {
		t.Errorf("stored %d sessions, want 1", len(store.sessions))
	}
	if active := m.Active(); active == nil || active.ID != first.ID {
		t.Error("original session should remain active")
	}
}

func TestStartRejectsStoredOpenSession(t *testing.T) {
	store := newFakeStore()
	start := time.Now()
	store.open = &models.WorkoutSession{ID: uuid.New(), UserID: 1, StartTime: &start}
	m, _ := newTestManager(store)

	_, err := m.Start(context.Background(), "New")
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err = %v, want ErrSessionActive", err)
	}
}

func TestResumeAdoptsStoredSession(t *testing.T) {
	store := newFakeStore()
	start := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	store.open = &models.WorkoutSession{
		ID: uuid.New(), UserID: 1, Name: "Interrupted", StartTime: &start,
	}
	m, clock := newTestManager(store)
	clock.t = start.Add(42 * time.Minute)

	resumed, err := m.ResumeIfExists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resumed {
		t.Fatal("expected resume")
	}
	// Elapsed anchors to the original start, not the resume instant.
	if got := m.Elapsed(); got != 42*time.Minute {
		t.Errorf("elapsed = %v, want 42m", got)
	}
}

func TestResumeWithNothingStored(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(store)

	resumed, err := m.ResumeIfExists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resumed {
		t.Error("nothing to resume, got resumed = true")
	}
}

func TestAddSetOrderIndexes(t *testing.T) {
	store := newFakeStore()
	ex := models.Exercise{ID: uuid.New(), Name: "Bench Press", Type: models.Strength}
	store.exercises[ex.ID] = ex
	m, _ := newTestManager(store)

	if _, err := m.Start(context.Background(), "Push"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		set, err := m.AddSet(context.Background(), AddSetParams{
			ExerciseID: ex.ID, Weight: 100, Reps: 5, Units: models.Metric,
		})
		if err != nil {
			t.Fatalf("add set %d: %v", i, err)
		}
		if set.OrderIndex != i+1 {
			t.Errorf("set %d order_index = %d, want %d", i, set.OrderIndex, i+1)
		}
		if set.Unit != models.Kilograms {
			t.Errorf("unit = %q, want kg", set.Unit)
		}
		if !set.IsCompleted {
			t.Error("manually logged set should be completed")
		}
	}
}

/// TestDeleteSetKeepsIndexes verifies deletion leaves a gap: the next added
// set still gets max+1, and survivors keep their indexes.
func TestDeleteSetKeepsIndexes(t *testing.T) {
	store := newFakeStore()
	ex := models.Exercise{ID: uuid.New(), Name: "Squat", Type: models.Strength}
	store.exercises[ex.ID] = ex
	m, _ := newTestManager(store)

	if _, err := m.Start(context.Background(), "Legs"); err != nil {
		t.Fatal(err)
	}

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		set, err := m.AddSet(context.Background(), AddSetParams{
			ExerciseID: ex.ID, Weight: 140, Reps: 5, Units: models.Metric,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, set.ID)
	}

	if err := m.DeleteSet(context.Background(), ids[1]); err != nil {
		t.Fatal(err)
	}

	for _, s := range store.sets {
		if s.ID == ids[0] && s.OrderIndex != 1 {
			t.Errorf("first set order_index = %d, want 1", s.OrderIndex)
		}
		if s.ID == ids[2] && s.OrderIndex != 3 {
			t.Errorf("third set order_index = %d, want 3", s.OrderIndex)
		}
	}

	set, err := m.AddSet(context.Background(), AddSetParams{
		ExerciseID: ex.ID, Weight: 140, Reps: 5, Units: models.Metric,
	})
	if err != nil {
		t.Fatal(err)
	}
	if set.OrderIndex != 4 {
		t.Errorf("new set order_index = %d, want 4 (no renumbering)", set.OrderIndex)
	}
}

func TestAddSetWithoutActiveSession(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(store)

	_, err := m.AddSet(context.Background(), AddSetParams{ExerciseID: uuid.New()})
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestCompleteSet(t *testing.T) {
	store := newFakeStore()
	ex := models.Exercise{ID: uuid.New(), Name: "Bench Press", Type: models.Strength}
	store.exercises[ex.ID] = ex
	m, _ := newTestManager(store)

	if _, err := m.Start(context.Background(), "Push"); err != nil {
		t.Fatal(err)
	}
	set, err := m.AddSet(context.Background(), AddSetParams{
		ExerciseID: ex.ID, Weight: 0, Reps: 0, Units: models.Metric,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.CompleteSet(context.Background(), set.ID, 80, 8); err != nil {
		t.Fatalf("complete set: %v", err)
	}
	got := store.sets[0]
	if got.Weight != 80 || got.Reps != 8 || !got.IsCompleted {
		t.Fatalf("set after complete = %+v, want weight 80, reps 8, completed", got)
	}
}

func TestCompleteSetWithoutActiveSession(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(store)

	err := m.CompleteSet(context.Background(), uuid.New(), 80, 8)
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestFinishCapturesDurationAndCancelsTimer(t *testing.T) {
	store := newFakeStore()
	m, clock := newTestManager(store)
	timer := &fakeTimer{}
	m.SetRestTimer(timer)

	s, err := m.Start(context.Background(), "Full Body")
	if err != nil {
		t.Fatal(err)
	}
	clock.advance(55 * time.Minute)

	if err := m.Finish(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.finished) != 1 || store.finished[0] != s.ID {
		t.Fatalf("finished = %v, want [%v]", store.finished, s.ID)
	}
	if timer.cancels != 1 {
		t.Errorf("timer cancels = %d, want 1", timer.cancels)
	}
	if m.Active() != nil {
		t.Error("manager should be back to no session")
	}
	if m.Elapsed() != 0 {
		t.Errorf("elapsed = %v, want 0 with no session", m.Elapsed())
	}
}

// TestFinishIdempotent verifies a second Finish is a silent no-op.
func TestFinishIdempotent(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(store)

	if _, err := m.Start(context.Background(), "A"); err != nil {
		t.Fatal(err)
	}
	if err := m.Finish(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Finish(context.Background()); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if len(store.finished) != 1 {
		t.Errorf("store finished %d times, want 1", len(store.finished))
	}
}

func TestStartFromRoutine(t *testing.T) {
	store := newFakeStore()
	node := strengthNode("Bench Press", 0, 8, 8)
	store.graph = &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New(), Name: "Push Day"},
		Items:   []models.RoutineItemNode{node},
	}
	m, _ := newTestManager(store)

	s, err := m.StartFromRoutine(context.Background(), store.graph.Routine.ID, models.Metric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Push Day" {
		t.Errorf("session name = %q, want routine name", s.Name)
	}
	if len(store.sets) != 2 {
		t.Fatalf("stored %d sets, want 2 seeded", len(store.sets))
	}
	for _, set := range store.sets {
		if set.SessionID != s.ID {
			t.Error("seeded set bound to wrong session")
		}
		if set.IsCompleted {
			t.Error("seeded sets start uncompleted")
		}
	}
}

// TestElapsedRecomputedFromAnchor verifies elapsed time is pure recomputation:
// a clock jump is fully reflected without any ticks in between.
func TestElapsedRecomputedFromAnchor(t *testing.T) {
	store := newFakeStore()
	m, clock := newTestManager(store)

	if _, err := m.Start(context.Background(), "A"); err != nil {
		t.Fatal(err)
	}
	clock.advance(3 * time.Hour)
	if got := m.Elapsed(); got != 3*time.Hour {
		t.Errorf("elapsed = %v, want 3h", got)
	}
}

func TestTickPublishesElapsed(t *testing.T) {
	store := newFakeStore()
	m, clock := newTestManager(store)

	var got []time.Duration
	m.OnElapsed(func(d time.Duration) { got = append(got, d) })

	// No session: tick publishes nothing.
	m.Tick()
	if len(got) != 0 {
		t.Fatalf("published %d values with no session, want 0", len(got))
	}

	if _, err := m.Start(context.Background(), "A"); err != nil {
		t.Fatal(err)
	}
	clock.advance(90 * time.Second)
	m.Tick()
	if len(got) != 1 || got[0] != 90*time.Second {
		t.Errorf("published = %v, want [90s]", got)
	}
}
