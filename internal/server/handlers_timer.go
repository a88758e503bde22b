package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleTimerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.timer.Snapshot())
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	seconds := s.restSeconds
	if r.Body != nil && r.ContentLength != 0 {
		var req struct {
			Seconds int `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if req.Seconds > 0 {
			seconds = req.Seconds
		}
	}

	writeJSON(w, http.StatusOK, s.timer.Start(seconds))
}

func (s *Server) handleTimerExtend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Seconds <= 0 {
		writeError(w, http.StatusBadRequest, "seconds must be positive")
		return
	}

	writeJSON(w, http.StatusOK, s.timer.Extend(req.Seconds))
}

func (s *Server) handleTimerCancel(w http.ResponseWriter, r *http.Request) {
	s.timer.Cancel()
	writeJSON(w, http.StatusOK, s.timer.Snapshot())
}
