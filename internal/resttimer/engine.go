// Package resttimer implements the between-set rest countdown.
//
// The engine never decrements a counter: it stores only the absolute end
// instant, and every observable value is recomputed from that anchor and
// the current wall-clock time. A process suspended mid-countdown reports
// the correct remaining time on its first tick after resume.
package resttimer

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultRestSeconds is the fallback duration when none is configured.
const DefaultRestSeconds = 90

// Notifier is the external countdown-presentation collaborator. It receives
// the absolute end instant and renders its own countdown against it; no
// per-tick forwarding happens.
type Notifier interface {
	// Publish announces a new or changed countdown target.
	Publish(endTime time.Time)
	// Clear ends the presentation immediately, whether the countdown
	// completed or was cancelled.
	Clear()
}

// State is a snapshot of the engine for API responses.
type State struct {
	Running          bool       `json:"running"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
}

// Engine is the rest-timer state machine: Idle, or Running toward endTime.
// It is independent of the session clock and may run with no active session.
type Engine struct {
	log      *slog.Logger
	now      func() time.Time
	notifier Notifier

	mu         sync.Mutex
	endTime    time.Time // zero while Idle
	onComplete func()
}

// New creates an idle Engine publishing to the given notifier.
func New(notifier Notifier, log *slog.Logger) *Engine {
	return &Engine{
		log:      log,
		now:      time.Now,
		notifier: notifier,
	}
}

// SetClock replaces the wall-clock source. Tests use this.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// OnComplete registers the completion signal, fired exactly once per cycle
// when the countdown reaches zero (not on Cancel).
func (e *Engine) OnComplete(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

// Start begins a countdown of the given duration, falling back to
// DefaultRestSeconds when seconds is not positive. The end instant is
// published to the presentation collaborator. Starting while Running
// restarts from now.
func (e *Engine) Start(seconds int) State {
	if seconds <= 0 {
		seconds = DefaultRestSeconds
	}

	e.mu.Lock()
	e.endTime = e.now().Add(time.Duration(seconds) * time.Second)
	end := e.endTime
	e.mu.Unlock()

	e.notifier.Publish(end)
	e.log.Debug("rest timer started", "seconds", seconds, "end", end)
	return e.Snapshot()
}

// Tick recomputes remaining time from the stored end instant. On expiry it
// transitions to Idle, clears the presentation, and fires the completion
// signal once. Ticking while Idle is a no-op. Meant to be driven on a short
// fixed interval (around 100 ms) purely for display smoothness.
func (e *Engine) Tick() State {
	e.mu.Lock()
	if e.endTime.IsZero() {
		e.mu.Unlock()
		return State{}
	}

	remaining := e.endTime.Sub(e.now())
	if remaining > 0 {
		st := State{Running: true, RemainingSeconds: ceilSeconds(remaining)}
		end := e.endTime
		st.EndTime = &end
		e.mu.Unlock()
		return st
	}

	// Expired: one completion signal, then Idle.
	e.endTime = time.Time{}
	done := e.onComplete
	e.mu.Unlock()

	e.notifier.Clear()
	if done != nil {
		done()
	}
	e.log.Debug("rest timer completed")
	return State{}
}

// Extend pushes the end instant out by the given seconds and republishes it
// immediately, without waiting for the next tick. Extending while Idle is a
// no-op, not an error.
func (e *Engine) Extend(seconds int) State {
	e.mu.Lock()
	if e.endTime.IsZero() {
		e.mu.Unlock()
		return State{}
	}
	e.endTime = e.endTime.Add(time.Duration(seconds) * time.Second)
	end := e.endTime
	e.mu.Unlock()

	e.notifier.Publish(end)
	return e.Snapshot()
}

// Cancel stops the countdown and clears the presentation so an externally
// rendered countdown stops now rather than freezing on stale data.
// Cancelling while Idle is a safe no-op.
func (e *Engine) Cancel() {
	e.mu.Lock()
	wasRunning := !e.endTime.IsZero()
	e.endTime = time.Time{}
	e.mu.Unlock()

	if wasRunning {
		e.notifier.Clear()
		e.log.Debug("rest timer cancelled")
	}
}

// Snapshot returns the current state without side effects.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.endTime.IsZero() {
		return State{}
	}
	remaining := e.endTime.Sub(e.now())
	if remaining < 0 {
		remaining = 0
	}
	end := e.endTime
	return State{Running: true, EndTime: &end, RemainingSeconds: ceilSeconds(remaining)}
}

// ceilSeconds rounds remaining time up to whole seconds: 29.9s displays as
// 30, never 29.
func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
