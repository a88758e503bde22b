package server

import (
	"net/http"
	"time"

	"github.com/claude/replog/internal/analytics"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.db.QuerySessionHistory(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.BuildProfile(history, time.Now()))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.db.QuerySessionHistory(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"total_volume_lbs": analytics.TotalVolume(history),
	})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	history, err := s.db.QuerySessionHistory(r.Context(), now.AddDate(-1, 0, 0), now, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"streak_days": analytics.CurrentStreak(history, now),
	})
}

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	start := analytics.WeekStart(now).AddDate(0, 0, -7*(analytics.ConsistencyWeeks-1))

	history, err := s.db.QuerySessionHistory(r.Context(), start, now, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ConsistencyPages(history, now))
}

func (s *Server) handleVolumePages(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	weeks := analytics.VolumeBlocks*analytics.WeeksPerBlock - 1
	start := analytics.WeekStart(now).AddDate(0, 0, -7*weeks)

	history, err := s.db.QuerySessionHistory(r.Context(), start, now, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.VolumePages(history, now))
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeError(w, http.StatusBadRequest, "exercise parameter required")
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.db.QuerySessionHistory(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ExerciseProgression(history, exercise))
}
