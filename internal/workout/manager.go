package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// Precondition failures surfaced to callers. State is left unchanged when
// these are returned.
var (
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
)

// Store is the slice of the entity store the manager needs. *storage.DB
// satisfies it.
type Store interface {
	FindOpenSession(ctx context.Context, userID int) (*models.WorkoutSession, error)
	InsertSession(ctx context.Context, s models.WorkoutSession) error
	InsertSessionWithSets(ctx context.Context, s models.WorkoutSession, sets []models.WorkoutSet) error
	FinishSession(ctx context.Context, id uuid.UUID, durationSec int64) error
	GetRoutineGraph(ctx context.Context, id uuid.UUID) (*models.RoutineGraph, error)
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	InsertSet(ctx context.Context, s models.WorkoutSet) error
	DeleteSet(ctx context.Context, id uuid.UUID) error
	UpdateSetCompleted(ctx context.Context, id uuid.UUID, weight float64, reps int, completed bool) error
	MaxOrderIndex(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// TimerCanceler is the rest-timer hook the manager fires when a session
// finishes, so no countdown outlives its session.
type TimerCanceler interface {
	Cancel()
}

// Manager owns the single active session and its elapsed-time clock.
//
// Elapsed time is always recomputed as now minus the session's start anchor,
// never accumulated from ticks, so it is correct immediately after process
// suspension regardless of how many ticks were missed.
type Manager struct {
	store  Store
	log    *slog.Logger
	now    func() time.Time
	userID int

	mu      sync.Mutex
	active  *models.WorkoutSession
	timer   TimerCanceler
	publish func(elapsed time.Duration)
}

// NewManager creates a Manager in the NoSession state.
func NewManager(store Store, userID int, log *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		log:    log,
		now:    time.Now,
		userID: userID,
	}
}

// SetClock replaces the wall-clock source. Tests use this.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetRestTimer wires the rest timer cancelled on Finish.
func (m *Manager) SetRestTimer(t TimerCanceler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = t
}

// OnElapsed registers the callback invoked with the recomputed elapsed time
// on every Tick.
func (m *Manager) OnElapsed(fn func(elapsed time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish = fn
}

// Active returns a copy of the active session, or nil in NoSession.
func (m *Manager) Active() *models.WorkoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	s := *m.active
	return &s
}

// ResumeIfExists adopts an unfinished session left in the store, typically
// after a restart. It is a no-op when a session is already active or none
// is stored. Returns whether a session is active afterwards.
func (m *Manager) ResumeIfExists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return true, nil
	}

	s, err := m.store.FindOpenSession(ctx, m.userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("finding open session: %w", err)
	}

	m.active = s
	m.log.Info("resumed session", "session", s.ID, "elapsed", m.elapsedLocked().String())
	return true, nil
}

// Start creates and adopts a new empty session. Fails with ErrSessionActive
// if one is already active, in memory or in the store; the existing session
// is never silently replaced.
func (m *Manager) Start(ctx context.Context, name string) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureNoSessionLocked(ctx); err != nil {
		return nil, err
	}

	s := m.newSessionLocked(name)
	if err := m.store.InsertSession(ctx, s); err != nil {
		return nil, err
	}

	m.active = &s
	m.log.Info("session started", "session", s.ID, "name", name)
	out := s
	return &out, nil
}

// StartFromRoutine creates a new session pre-filled with the routine's
// materialized seed sets. The session and all its sets are inserted
// atomically.
func (m *Manager) StartFromRoutine(ctx context.Context, routineID uuid.UUID, sys models.UnitSystem) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureNoSessionLocked(ctx); err != nil {
		return nil, err
	}

	g, err := m.store.GetRoutineGraph(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("loading routine: %w", err)
	}

	s := m.newSessionLocked(g.Routine.Name)
	sets := Materialize(g, s.ID, sys, m.log)

	if err := m.store.InsertSessionWithSets(ctx, s, sets); err != nil {
		return nil, err
	}

	m.active = &s
	m.log.Info("session started from routine",
		"session", s.ID, "routine", routineID, "sets", len(sets))
	out := s
	return &out, nil
}

// AddSetParams carries one logged set. Distance and DurationSec are set for
// cardio entries. Units is the unit system in effect right now; the set's
// unit is stamped from it at this instant and never rewritten.
type AddSetParams struct {
	ExerciseID  uuid.UUID
	Weight      float64
	Reps        int
	Distance    *float64
	DurationSec *float64
	Units       models.UnitSystem
}

// AddSet appends a set to the active session with the next order index
// (max existing + 1).
func (m *Manager) AddSet(ctx context.Context, p AddSetParams) (*models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoActiveSession
	}

	ex, err := m.store.GetExercise(ctx, p.ExerciseID)
	if err != nil {
		return nil, fmt.Errorf("resolving exercise: %w", err)
	}

	max, err := m.store.MaxOrderIndex(ctx, m.active.ID)
	if err != nil {
		return nil, err
	}

	set := models.WorkoutSet{
		ID:          uuid.New(),
		SessionID:   m.active.ID,
		ExerciseID:  ex.ID,
		OrderIndex:  max + 1,
		Weight:      p.Weight,
		Reps:        p.Reps,
		Distance:    p.Distance,
		DurationSec: p.DurationSec,
		Unit:        models.ResolveUnit(ex.Type, p.Units),
		IsCompleted: true,
	}
	if err := m.store.InsertSet(ctx, set); err != nil {
		return nil, err
	}
	return &set, nil
}

// CompleteSet fills in a seeded set with the performed weight and reps and
// marks it done. The set's unit stays whatever was stamped at creation.
func (m *Manager) CompleteSet(ctx context.Context, setID uuid.UUID, weight float64, reps int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ErrNoActiveSession
	}
	return m.store.UpdateSetCompleted(ctx, setID, weight, reps, true)
}

// DeleteSet removes a set from the active session. Remaining order indexes
// keep their values; gaps are fine.
func (m *Manager) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ErrNoActiveSession
	}
	return m.store.DeleteSet(ctx, setID)
}

// Finish completes the active session: duration is captured once as now
// minus the start anchor, the rest timer is cancelled, and the manager
// returns to NoSession. Finishing with no active session is a no-op.
func (m *Manager) Finish(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}

	duration := int64(m.elapsedLocked().Seconds())
	if err := m.store.FinishSession(ctx, m.active.ID, duration); err != nil {
		return err
	}

	if m.timer != nil {
		m.timer.Cancel()
	}

	m.log.Info("session finished", "session", m.active.ID, "duration_sec", duration)
	m.active = nil
	return nil
}

// Elapsed returns the active session's elapsed time, zero in NoSession.
func (m *Manager) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsedLocked()
}

// Tick recomputes elapsed time from the start anchor and republishes it.
// Meant to be driven at 1 Hz by the host; missed or delayed ticks cause no
// drift because nothing is accumulated.
func (m *Manager) Tick() {
	m.mu.Lock()
	elapsed := m.elapsedLocked()
	publish := m.publish
	active := m.active != nil
	m.mu.Unlock()

	if active && publish != nil {
		publish(elapsed)
	}
}

func (m *Manager) elapsedLocked() time.Duration {
	if m.active == nil || m.active.StartTime == nil {
		return 0
	}
	return m.now().Sub(*m.active.StartTime)
}

// ensureNoSessionLocked rejects Start when a session is active in memory or
// an unfinished one is in the store.
func (m *Manager) ensureNoSessionLocked(ctx context.Context) error {
	if m.active != nil {
		return ErrSessionActive
	}
	_, err := m.store.FindOpenSession(ctx, m.userID)
	if err == nil {
		return ErrSessionActive
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("checking for open session: %w", err)
	}
	return nil
}

func (m *Manager) newSessionLocked(name string) models.WorkoutSession {
	now := m.now()
	return models.WorkoutSession{
		ID:        uuid.New(),
		UserID:    m.userID,
		Name:      name,
		Date:      now,
		StartTime: &now,
	}
}
