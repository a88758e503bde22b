package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/replog/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// routineRequest is the authoring payload: a fully-formed routine graph.
// Items sharing a superset label are grouped under one generated superset
// ID.
type routineRequest struct {
	Name  string `json:"name"`
	Note  string `json:"note"`
	Items []struct {
		ExerciseID    uuid.UUID `json:"exercise_id"`
		Note          string    `json:"note"`
		SupersetLabel string    `json:"superset_label,omitempty"`
		TargetReps    []int     `json:"target_reps"`
	} `json:"items"`
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	g := models.RoutineGraph{
		Routine: models.Routine{
			ID:     uuid.New(),
			UserID: defaultUserID,
			Name:   req.Name,
			Note:   req.Note,
		},
	}

	supersets := make(map[string]uuid.UUID)
	for i, item := range req.Items {
		node := models.RoutineItemNode{
			Item: models.RoutineItem{
				ID:         uuid.New(),
				RoutineID:  g.Routine.ID,
				ExerciseID: item.ExerciseID,
				OrderIndex: i,
				Note:       item.Note,
			},
		}
		if item.SupersetLabel != "" {
			gid, ok := supersets[item.SupersetLabel]
			if !ok {
				gid = uuid.New()
				supersets[item.SupersetLabel] = gid
			}
			node.Item.Superset = models.PartOfSuperset(gid)
		}
		for j, reps := range item.TargetReps {
			node.Templates = append(node.Templates, models.RoutineSetTemplate{
				ID:            uuid.New(),
				RoutineItemID: node.Item.ID,
				OrderIndex:    j,
				TargetReps:    reps,
			})
		}
		g.Items = append(g.Items, node)
	}

	if err := s.db.InsertRoutineGraph(r.Context(), g); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.db.ListRoutines(r.Context(), defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid routine ID")
		return
	}

	g, err := s.db.GetRoutineGraph(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid routine ID")
		return
	}

	if err := s.db.DeleteRoutine(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDeleteSetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template ID")
		return
	}

	if err := s.db.DeleteSetTemplate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string              `json:"name"`
		Type        models.ExerciseType `json:"type"`
		MuscleGroup string              `json:"muscle_group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Type != models.Strength && req.Type != models.Cardio {
		writeError(w, http.StatusBadRequest, "type must be strength or cardio")
		return
	}

	e := models.Exercise{
		ID:          uuid.New(),
		Name:        req.Name,
		Type:        req.Type,
		MuscleGroup: req.MuscleGroup,
	}
	inserted, err := s.db.InsertExercise(r.Context(), e)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !inserted {
		writeError(w, http.StatusConflict, "exercise already exists")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}
