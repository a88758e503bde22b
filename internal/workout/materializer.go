package workout

import (
	"log/slog"
	"sort"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
)

// Materialize expands a routine into the seed sets for a new session.
//
// Items are walked in order; each emits one set per template (carrying the
// template's target reps), or a single reps=0 set when the item has no
// templates so the exercise is still loggable. A single counter assigns
// order indexes across the whole session starting at 1, which preserves the
// authored exercise order when sets are later grouped by exercise.
//
// Items whose exercise reference did not resolve are skipped: nothing is
// emitted for them, and no set with a missing exercise ever reaches the
// store.
func Materialize(g *models.RoutineGraph, sessionID uuid.UUID, sys models.UnitSystem, log *slog.Logger) []models.WorkoutSet {
	items := make([]models.RoutineItemNode, len(g.Items))
	copy(items, g.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Item.OrderIndex < items[j].Item.OrderIndex
	})

	var sets []models.WorkoutSet
	order := 0

	for _, node := range items {
		if node.Exercise == nil {
			log.Warn("skipping routine item with unresolved exercise",
				"routine", g.Routine.ID, "item", node.Item.ID)
			continue
		}

		unit := models.ResolveUnit(node.Exercise.Type, sys)
		itemID := node.Item.ID

		emit := func(targetReps int) {
			order++
			sets = append(sets, models.WorkoutSet{
				ID:            uuid.New(),
				SessionID:     sessionID,
				ExerciseID:    node.Exercise.ID,
				RoutineItemID: &itemID,
				OrderIndex:    order,
				Reps:          targetReps,
				Unit:          unit,
			})
		}

		if len(node.Templates) == 0 {
			emit(0)
			continue
		}
		tmpls := make([]models.RoutineSetTemplate, len(node.Templates))
		copy(tmpls, node.Templates)
		sort.SliceStable(tmpls, func(i, j int) bool {
			return tmpls[i].OrderIndex < tmpls[j].OrderIndex
		})
		for _, tmpl := range tmpls {
			emit(tmpl.TargetReps)
		}
	}

	return sets
}
