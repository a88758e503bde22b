package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/replog/internal/advisor"
	"github.com/claude/replog/internal/analytics"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

func (s *Server) handleAdvisorRoutine(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advisor not configured")
		return
	}

	var req struct {
		Request string `json:"request"`
		Save    bool   `json:"save"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	profile, err := s.buildProfile(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	plan, err := s.advisor.SuggestRoutine(r.Context(), profile, req.Request)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := map[string]any{"plan": plan}
	if req.Save {
		g, err := s.saveAdvisorRoutine(r.Context(), plan)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp["routine"] = g.Routine
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvisorSchedule(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advisor not configured")
		return
	}

	var req struct {
		Request string `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	profile, err := s.buildProfile(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sched, err := s.advisor.SuggestSchedule(r.Context(), profile, req.Request)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (s *Server) buildProfile(ctx context.Context) (analytics.TrainingProfile, error) {
	now := time.Now()
	history, err := s.db.QuerySessionHistory(ctx, now.AddDate(0, -6, 0), now, defaultUserID)
	if err != nil {
		return analytics.TrainingProfile{}, err
	}
	return analytics.BuildProfile(history, now), nil
}

// saveAdvisorRoutine persists an accepted advisory plan as a routine graph.
// Exercise names are resolved case-insensitively; unknown ones are created
// as strength exercises.
func (s *Server) saveAdvisorRoutine(ctx context.Context, plan *advisor.RoutinePlan) (*models.RoutineGraph, error) {
	g := models.RoutineGraph{
		Routine: models.Routine{
			ID:     uuid.New(),
			UserID: defaultUserID,
			Name:   plan.RoutineName,
			Note:   "Suggested by advisor",
		},
	}

	for i, ex := range plan.Exercises {
		resolved, err := s.db.FindExerciseByName(ctx, ex.Name)
		if errors.Is(err, storage.ErrNotFound) {
			created := models.Exercise{ID: uuid.New(), Name: ex.Name, Type: models.Strength}
			if _, err := s.db.InsertExercise(ctx, created); err != nil {
				return nil, err
			}
			resolved = &created
		} else if err != nil {
			return nil, err
		}

		node := models.RoutineItemNode{
			Item: models.RoutineItem{
				ID:         uuid.New(),
				RoutineID:  g.Routine.ID,
				ExerciseID: resolved.ID,
				OrderIndex: i,
				Note:       ex.Note,
			},
		}
		for j := 0; j < ex.Sets; j++ {
			node.Templates = append(node.Templates, models.RoutineSetTemplate{
				ID:            uuid.New(),
				RoutineItemID: node.Item.ID,
				OrderIndex:    j,
				TargetReps:    ex.Reps,
			})
		}
		g.Items = append(g.Items, node)
	}

	if err := s.db.InsertRoutineGraph(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}
