package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/replog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	active := s.manager.Active()
	if active == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}

	detail, err := s.db.GetSessionDetail(r.Context(), active.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":      true,
		"session":     detail.Session,
		"sets":        detail.Sets,
		"elapsed_sec": int64(s.manager.Elapsed().Seconds()),
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		req.Name = "Workout"
	}

	session, err := s.manager.Start(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleStartFromRoutine(w http.ResponseWriter, r *http.Request) {
	routineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid routine ID")
		return
	}

	session, err := s.manager.StartFromRoutine(r.Context(), routineID, s.units)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	detail, err := s.db.GetSessionDetail(r.Context(), session.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	resumed, err := s.manager.ResumeIfExists(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":      resumed,
		"elapsed_sec": int64(s.manager.Elapsed().Seconds()),
	})
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Finish(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID  uuid.UUID `json:"exercise_id"`
		Weight      float64   `json:"weight"`
		Reps        int       `json:"reps"`
		Distance    *float64  `json:"distance,omitempty"`
		DurationSec *float64  `json:"duration_sec,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	set, err := s.manager.AddSet(r.Context(), workout.AddSetParams{
		ExerciseID:  req.ExerciseID,
		Weight:      req.Weight,
		Reps:        req.Reps,
		Distance:    req.Distance,
		DurationSec: req.DurationSec,
		Units:       s.units,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set ID")
		return
	}

	var req struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := s.manager.CompleteSet(r.Context(), setID, req.Weight, req.Reps); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set ID")
		return
	}

	if err := s.manager.DeleteSet(r.Context(), setID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessions, err := s.db.ListSessions(r.Context(), start, end, defaultUserID, 200, 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	detail, err := s.db.GetSessionDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return
	}

	// The active session is managed through the lifecycle endpoints only.
	if active := s.manager.Active(); active != nil && active.ID == id {
		writeError(w, http.StatusConflict, "cannot delete the active session")
		return
	}

	if err := s.db.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
