package csvio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// Store is the slice of the entity store the importer needs. *storage.DB
// satisfies it.
type Store interface {
	FindExerciseByName(ctx context.Context, name string) (*models.Exercise, error)
	InsertExercise(ctx context.Context, e models.Exercise) (bool, error)
	InsertSessionWithSets(ctx context.Context, s models.WorkoutSession, sets []models.WorkoutSet) error
}

// Stats summarizes one import run.
type Stats struct {
	SessionsInserted int
	SetsInserted     int
	ExercisesCreated int
}

// Importer applies parsed CSV sessions to the entity store.
type Importer struct {
	store  Store
	log    *slog.Logger
	userID int
	dryRun bool
}

// NewImporter creates an Importer. With dryRun set it resolves and counts
// but writes nothing.
func NewImporter(store Store, userID int, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{store: store, log: log, userID: userID, dryRun: dryRun}
}

// Apply inserts the parsed sessions. Exercise names are resolved
// case-insensitively against the catalog; unknown names create a new
// exercise, typed cardio when the row carries distance or time data. Each
// session and its sets are inserted atomically.
func (imp *Importer) Apply(ctx context.Context, sessions []ParsedSession) (*Stats, error) {
	stats := &Stats{}
	resolved := make(map[string]uuid.UUID)

	for _, ps := range sessions {
		session := models.WorkoutSession{
			ID:          uuid.New(),
			UserID:      imp.userID,
			Name:        ps.Name,
			Date:        ps.Date,
			DurationSec: int64(ps.DurationMinutes) * 60,
			IsCompleted: true,
		}

		sets := make([]models.WorkoutSet, 0, len(ps.Rows))
		for i, row := range ps.Rows {
			exID, err := imp.resolveExercise(ctx, row, resolved, stats)
			if err != nil {
				return stats, err
			}

			sets = append(sets, models.WorkoutSet{
				ID:          uuid.New(),
				SessionID:   session.ID,
				ExerciseID:  exID,
				OrderIndex:  i + 1,
				Weight:      row.Weight,
				Reps:        row.Reps,
				Distance:    row.Distance,
				DurationSec: row.TimeSec,
				Unit:        row.Unit,
				IsCompleted: true,
			})
		}

		if !imp.dryRun {
			if err := imp.store.InsertSessionWithSets(ctx, session, sets); err != nil {
				return stats, fmt.Errorf("inserting session %q: %w", ps.Name, err)
			}
		}
		stats.SessionsInserted++
		stats.SetsInserted += len(sets)
	}

	return stats, nil
}

func (imp *Importer) resolveExercise(ctx context.Context, row Row, cache map[string]uuid.UUID, stats *Stats) (uuid.UUID, error) {
	key := normalizeName(row.Exercise)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	ex, err := imp.store.FindExerciseByName(ctx, row.Exercise)
	if err == nil {
		cache[key] = ex.ID
		return ex.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return uuid.Nil, err
	}

	exType := models.Strength
	if row.IsCardio() {
		exType = models.Cardio
	}
	created := models.Exercise{
		ID:   uuid.New(),
		Name: row.Exercise,
		Type: exType,
	}
	if !imp.dryRun {
		if _, err := imp.store.InsertExercise(ctx, created); err != nil {
			return uuid.Nil, err
		}
	}
	imp.log.Info("created exercise from import", "name", created.Name, "type", exType)
	stats.ExercisesCreated++
	cache[key] = created.ID
	return created.ID, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
