package workout

import (
	"io"
	"log/slog"
	"testing"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strengthNode(name string, orderIndex int, targetReps ...int) models.RoutineItemNode {
	ex := &models.Exercise{ID: uuid.New(), Name: name, Type: models.Strength}
	item := models.RoutineItem{ID: uuid.New(), ExerciseID: ex.ID, OrderIndex: orderIndex}
	var tmpls []models.RoutineSetTemplate
	for i, reps := range targetReps {
		tmpls = append(tmpls, models.RoutineSetTemplate{
			ID:            uuid.New(),
			RoutineItemID: item.ID,
			OrderIndex:    i,
			TargetReps:    reps,
		})
	}
	return models.RoutineItemNode{Item: item, Exercise: ex, Templates: tmpls}
}

func TestMaterializeOrdering(t *testing.T) {
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New(), Name: "Push Day"},
		Items: []models.RoutineItemNode{
			strengthNode("Bench Press", 0, 8, 8),
			strengthNode("Overhead Press", 1, 10),
		},
	}
	sessionID := uuid.New()

	sets := Materialize(g, sessionID, models.Metric, discardLog())
	if len(sets) != 3 {
		t.Fatalf("got %d sets, want 3", len(sets))
	}
	for i, s := range sets {
		if s.OrderIndex != i+1 {
			t.Errorf("set %d order_index = %d, want %d", i, s.OrderIndex, i+1)
		}
		if s.SessionID != sessionID {
			t.Errorf("set %d session_id = %v, want %v", i, s.SessionID, sessionID)
		}
	}
	bench := g.Items[0].Exercise.ID
	ohp := g.Items[1].Exercise.ID
	if sets[0].ExerciseID != bench || sets[1].ExerciseID != bench {
		t.Error("first two sets should belong to the first item's exercise")
	}
	if sets[2].ExerciseID != ohp {
		t.Error("third set should belong to the second item's exercise")
	}
	if sets[0].Reps != 8 || sets[1].Reps != 8 || sets[2].Reps != 10 {
		t.Errorf("target reps = %d,%d,%d, want 8,8,10",
			sets[0].Reps, sets[1].Reps, sets[2].Reps)
	}
}

// TestMaterializeUnsortedInput verifies items and templates are walked in
// order-index order regardless of slice order.
func TestMaterializeUnsortedInput(t *testing.T) {
	first := strengthNode("Squat", 0, 5)
	second := strengthNode("Deadlift", 1, 3)
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New()},
		Items:   []models.RoutineItemNode{second, first},
	}

	sets := Materialize(g, uuid.New(), models.Metric, discardLog())
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
	if sets[0].ExerciseID != first.Exercise.ID {
		t.Error("lower order index should materialize first")
	}
}

func TestMaterializeEmptyTemplates(t *testing.T) {
	node := strengthNode("Curl", 0) // no templates
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New()},
		Items:   []models.RoutineItemNode{node},
	}

	sets := Materialize(g, uuid.New(), models.Metric, discardLog())
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1 placeholder", len(sets))
	}
	if sets[0].Reps != 0 {
		t.Errorf("placeholder reps = %d, want 0", sets[0].Reps)
	}
	if sets[0].OrderIndex != 1 {
		t.Errorf("order_index = %d, want 1", sets[0].OrderIndex)
	}
}

func TestMaterializeSkipsBrokenReference(t *testing.T) {
	ok := strengthNode("Row", 1, 12)
	broken := models.RoutineItemNode{
		Item: models.RoutineItem{ID: uuid.New(), OrderIndex: 0},
		// Exercise nil: reference did not resolve
	}
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New()},
		Items:   []models.RoutineItemNode{broken, ok},
	}

	sets := Materialize(g, uuid.New(), models.Metric, discardLog())
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	if sets[0].ExerciseID != ok.Exercise.ID {
		t.Error("only the resolvable item should materialize")
	}
	if sets[0].OrderIndex != 1 {
		t.Errorf("order_index = %d, want 1", sets[0].OrderIndex)
	}
}

func TestMaterializeUnitResolution(t *testing.T) {
	strength := strengthNode("Press", 0, 5)
	cardioEx := &models.Exercise{ID: uuid.New(), Name: "Run", Type: models.Cardio}
	cardio := models.RoutineItemNode{
		Item:     models.RoutineItem{ID: uuid.New(), ExerciseID: cardioEx.ID, OrderIndex: 1},
		Exercise: cardioEx,
	}
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New()},
		Items:   []models.RoutineItemNode{strength, cardio},
	}

	sets := Materialize(g, uuid.New(), models.Imperial, discardLog())
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
	if sets[0].Unit != models.Pounds {
		t.Errorf("strength unit = %q, want %q", sets[0].Unit, models.Pounds)
	}
	if sets[1].Unit != models.Mile {
		t.Errorf("cardio unit = %q, want %q", sets[1].Unit, models.Mile)
	}
}

func TestMaterializeCarriesRoutineItemID(t *testing.T) {
	node := strengthNode("Dip", 0, 10)
	g := &models.RoutineGraph{
		Routine: models.Routine{ID: uuid.New()},
		Items:   []models.RoutineItemNode{node},
	}

	sets := Materialize(g, uuid.New(), models.Metric, discardLog())
	if sets[0].RoutineItemID == nil || *sets[0].RoutineItemID != node.Item.ID {
		t.Error("materialized set should reference its routine item")
	}
}
