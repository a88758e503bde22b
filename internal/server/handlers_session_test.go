package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/workout"
	"github.com/google/uuid"
)

// memStore is an in-memory workout.Store for handler tests.
type memStore struct {
	open      *models.WorkoutSession
	sessions  []models.WorkoutSession
	sets      []models.WorkoutSet
	exercises map[uuid.UUID]models.Exercise
}

func newMemStore() *memStore {
	return &memStore{exercises: make(map[uuid.UUID]models.Exercise)}
}

func (m *memStore) FindOpenSession(ctx context.Context, userID int) (*models.WorkoutSession, error) {
	if m.open == nil {
		return nil, storage.ErrNotFound
	}
	s := *m.open
	return &s, nil
}

func (m *memStore) InsertSession(ctx context.Context, s models.WorkoutSession) error {
	m.sessions = append(m.sessions, s)
	return nil
}

func (m *memStore) InsertSessionWithSets(ctx context.Context, s models.WorkoutSession, sets []models.WorkoutSet) error {
	m.sessions = append(m.sessions, s)
	m.sets = append(m.sets, sets...)
	return nil
}

func (m *memStore) FinishSession(ctx context.Context, id uuid.UUID, durationSec int64) error {
	return nil
}

func (m *memStore) GetRoutineGraph(ctx context.Context, id uuid.UUID) (*models.RoutineGraph, error) {
	return nil, storage.ErrNotFound
}

func (m *memStore) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	ex, ok := m.exercises[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &ex, nil
}

func (m *memStore) InsertSet(ctx context.Context, s models.WorkoutSet) error {
	m.sets = append(m.sets, s)
	return nil
}

func (m *memStore) DeleteSet(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *memStore) UpdateSetCompleted(ctx context.Context, id uuid.UUID, weight float64, reps int, completed bool) error {
	return nil
}

func (m *memStore) MaxOrderIndex(ctx context.Context, sessionID uuid.UUID) (int, error) {
	max := 0
	for _, s := range m.sets {
		if s.SessionID == sessionID && s.OrderIndex > max {
			max = s.OrderIndex
		}
	}
	return max, nil
}

func sessionServer(store workout.Store) *Server {
	manager := workout.NewManager(store, 1, testLogger())
	return &Server{
		manager: manager,
		log:     testLogger(),
		units:   models.Metric,
	}
}

func TestHandleStartSession(t *testing.T) {
	s := sessionServer(newMemStore())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"name":"Push Day"}`))
	rec := httptest.NewRecorder()

	s.handleStartSession(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var session models.WorkoutSession
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if session.Name != "Push Day" {
		t.Errorf("name = %q, want Push Day", session.Name)
	}
}

func TestHandleStartSessionDefaultsName(t *testing.T) {
	s := sessionServer(newMemStore())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	s.handleStartSession(rec, req)

	var session models.WorkoutSession
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if session.Name != "Workout" {
		t.Errorf("name = %q, want default Workout", session.Name)
	}
}

// TestHandleStartSessionConflict verifies a second start returns 409.
func TestHandleStartSessionConflict(t *testing.T) {
	s := sessionServer(newMemStore())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"name":"A"}`))
	s.handleStartSession(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"name":"B"}`))
	rec := httptest.NewRecorder()
	s.handleStartSession(rec, second)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleAddSetWithoutSession(t *testing.T) {
	s := sessionServer(newMemStore())
	body := `{"exercise_id":"` + uuid.NewString() + `","weight":100,"reps":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/sets", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleAddSet(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 with no active session", rec.Code)
	}
}

func TestHandleAddSet(t *testing.T) {
	store := newMemStore()
	ex := models.Exercise{ID: uuid.New(), Name: "Bench Press", Type: models.Strength}
	store.exercises[ex.ID] = ex
	s := sessionServer(store)

	start := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"name":"A"}`))
	s.handleStartSession(httptest.NewRecorder(), start)

	body := `{"exercise_id":"` + ex.ID.String() + `","weight":80,"reps":8}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/sets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleAddSet(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var set models.WorkoutSet
	if err := json.NewDecoder(rec.Body).Decode(&set); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if set.OrderIndex != 1 {
		t.Errorf("order_index = %d, want 1", set.OrderIndex)
	}
	if set.Unit != models.Kilograms {
		t.Errorf("unit = %q, want kg under metric config", set.Unit)
	}
}

func TestHandleCompleteSetBadID(t *testing.T) {
	s := sessionServer(newMemStore())

	// No route context means an empty id param, which must not parse.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/sets/not-a-uuid/complete", strings.NewReader(`{"weight":80,"reps":8}`))
	rec := httptest.NewRecorder()
	s.handleCompleteSet(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleFinishSessionIdempotent(t *testing.T) {
	s := sessionServer(newMemStore())

	// Finishing with nothing active still succeeds.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/finish", nil)
	rec := httptest.NewRecorder()
	s.handleFinishSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleResumeSessionNothingStored(t *testing.T) {
	s := sessionServer(newMemStore())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/resume", nil)
	rec := httptest.NewRecorder()

	s.handleResumeSession(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Active {
		t.Error("active = true, want false with empty store")
	}
}

func TestHandleActiveSessionNone(t *testing.T) {
	s := sessionServer(newMemStore())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	rec := httptest.NewRecorder()

	s.handleActiveSession(rec, req)

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Active {
		t.Error("active = true, want false")
	}
}
