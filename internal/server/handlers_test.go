package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/replog/internal/resttimer"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/workout"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleHealth(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

// TestWriteDomainError verifies the core-error to HTTP-status mapping.
func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{workout.ErrSessionActive, http.StatusConflict},
		{workout.ErrNoActiveSession, http.StatusConflict},
		{storage.ErrNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("writeDomainError(%v) status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func timerServer() (*Server, *resttimer.Engine) {
	timer := resttimer.New(resttimer.NopNotifier{}, testLogger())
	return &Server{timer: timer, restSeconds: 90}, timer
}

func TestHandleTimerStartDefault(t *testing.T) {
	s, _ := timerServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timer", nil)
	rec := httptest.NewRecorder()

	s.handleTimerStart(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st resttimer.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !st.Running || st.RemainingSeconds != 90 {
		t.Errorf("state = %+v, want running with 90s", st)
	}
}

func TestHandleTimerStartExplicitSeconds(t *testing.T) {
	s, _ := timerServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timer", strings.NewReader(`{"seconds":45}`))
	rec := httptest.NewRecorder()

	s.handleTimerStart(rec, req)

	var st resttimer.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if st.RemainingSeconds != 45 {
		t.Errorf("remaining = %d, want 45", st.RemainingSeconds)
	}
}

func TestHandleTimerExtendValidation(t *testing.T) {
	s, timer := timerServer()
	timer.Start(60)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timer/extend", strings.NewReader(`{"seconds":-10}`))
	rec := httptest.NewRecorder()
	s.handleTimerExtend(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-positive extension", rec.Code)
	}
}

func TestHandleTimerCancel(t *testing.T) {
	s, timer := timerServer()
	timer.Start(60)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timer/cancel", nil)
	rec := httptest.NewRecorder()
	s.handleTimerCancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st resttimer.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if st.Running {
		t.Error("timer should be idle after cancel")
	}
}

func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2026-01-01&end=2026-02-01", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Format("2006-01-02") != "2026-01-01" || end.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("range = %v..%v", start, end)
	}

	// RFC3339 also accepted.
	req = httptest.NewRequest(http.MethodGet, "/?start=2026-01-01T10:00:00Z", nil)
	if _, _, err := parseTimeRange(req); err != nil {
		t.Errorf("RFC3339 start rejected: %v", err)
	}

	// No params: defaults to the trailing 90 days.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	start, end, err = parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := end.Sub(start); d < 89*24*time.Hour || d > 91*24*time.Hour {
		t.Errorf("default window = %v, want about 90 days", d)
	}

	req = httptest.NewRequest(http.MethodGet, "/?start=not-a-date", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("bad start should error")
	}
}

// TestAdvisorUnconfigured verifies advisor endpoints return 503 when no
// advisory service is configured.
func TestAdvisorUnconfigured(t *testing.T) {
	s := &Server{log: testLogger()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/advisor/routine", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	s.handleAdvisorRoutine(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
