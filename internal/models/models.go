package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseType distinguishes weight-based from distance/time-based exercises.
type ExerciseType string

const (
	Strength ExerciseType = "strength"
	Cardio   ExerciseType = "cardio"
)

// Exercise is long-lived reference data. Exercises are never deleted while
// referenced by logged sets; the schema enforces this with ON DELETE RESTRICT.
type Exercise struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Type        ExerciseType `json:"type"`
	MuscleGroup string       `json:"muscle_group"`
}

// WorkoutSession is one logged workout occurrence. It exclusively owns its
// WorkoutSet collection: deleting a session deletes its sets.
type WorkoutSession struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	Name        string     `json:"name"`
	Date        time.Time  `json:"date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	DurationSec int64      `json:"duration_sec"`
	IsCompleted bool       `json:"is_completed"`
	Notes       string     `json:"notes,omitempty"`
}

// WorkoutSet is one logged performance unit: weight x reps for strength,
// distance/duration for cardio. Its unit is fixed at creation from the
// exercise type and the unit system in effect at that instant; later unit
// preference changes never rewrite existing sets.
type WorkoutSet struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     uuid.UUID  `json:"session_id"`
	ExerciseID    uuid.UUID  `json:"exercise_id"`
	RoutineItemID *uuid.UUID `json:"routine_item_id,omitempty"`
	OrderIndex    int        `json:"order_index"`
	Weight        float64    `json:"weight"`
	Reps          int        `json:"reps"`
	Distance      *float64   `json:"distance,omitempty"`
	DurationSec   *float64   `json:"duration_sec,omitempty"`
	Unit          Unit       `json:"unit"`
	IsCompleted   bool       `json:"is_completed"`
}

// Routine is a reusable template of exercises with target set/rep counts.
// It exclusively owns its RoutineItem collection (cascade delete); the
// Exercises an item references are never deleted with the routine.
type Routine struct {
	ID     uuid.UUID `json:"id"`
	UserID int       `json:"user_id"`
	Name   string    `json:"name"`
	Note   string    `json:"note,omitempty"`
}

// RoutineItem is one exercise slot within a routine. It exclusively owns its
// RoutineSetTemplate collection.
type RoutineItem struct {
	ID         uuid.UUID   `json:"id"`
	RoutineID  uuid.UUID   `json:"routine_id"`
	ExerciseID uuid.UUID   `json:"exercise_id"`
	OrderIndex int         `json:"order_index"`
	Note       string      `json:"note,omitempty"`
	Superset   SupersetRef `json:"superset"`
}

// RoutineSetTemplate is one target set within a routine item. Order indexes
// are kept compact (0..n-1) after deletions.
type RoutineSetTemplate struct {
	ID            uuid.UUID `json:"id"`
	RoutineItemID uuid.UUID `json:"routine_item_id"`
	OrderIndex    int       `json:"order_index"`
	TargetReps    int       `json:"target_reps"`
}

// SessionDetail is a session joined with its sets and their exercise data,
// the shape the analytics and CSV layers consume.
type SessionDetail struct {
	Session WorkoutSession `json:"session"`
	Sets    []SetDetail    `json:"sets"`
}

// SetDetail is a set joined with its exercise's reference data.
type SetDetail struct {
	WorkoutSet
	ExerciseName string       `json:"exercise_name"`
	ExerciseType ExerciseType `json:"exercise_type"`
	MuscleGroup  string       `json:"muscle_group"`
}

// RoutineGraph is a fully loaded routine: the routine row, its items in
// order, each with its resolved exercise and ordered templates. Exercise is
// nil when the item's reference could not be resolved.
type RoutineGraph struct {
	Routine Routine           `json:"routine"`
	Items   []RoutineItemNode `json:"items"`
}

// RoutineItemNode is one item within a RoutineGraph.
type RoutineItemNode struct {
	Item      RoutineItem          `json:"item"`
	Exercise  *Exercise            `json:"exercise,omitempty"`
	Templates []RoutineSetTemplate `json:"templates"`
}
