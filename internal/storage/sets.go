package storage

import (
	"context"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setDetailColumns = `ws.id, ws.session_id, ws.exercise_id, ws.routine_item_id,
	 ws.order_index, ws.weight, ws.reps, ws.distance, ws.duration_sec, ws.unit,
	 ws.is_completed, e.name, e.type, e.muscle_group`

func scanSetDetail(row pgx.Row) (models.SetDetail, error) {
	var d models.SetDetail
	err := row.Scan(&d.ID, &d.SessionID, &d.ExerciseID, &d.RoutineItemID,
		&d.OrderIndex, &d.Weight, &d.Reps, &d.Distance, &d.DurationSec, &d.Unit,
		&d.IsCompleted, &d.ExerciseName, &d.ExerciseType, &d.MuscleGroup)
	if err != nil {
		return models.SetDetail{}, fmt.Errorf("scanning set: %w", err)
	}
	return d, nil
}

// InsertSet inserts a single set row.
func (db *DB) InsertSet(ctx context.Context, s models.WorkoutSet) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sets (id, session_id, exercise_id, routine_item_id, order_index,
		 weight, reps, distance, duration_sec, unit, is_completed)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.SessionID, s.ExerciseID, s.RoutineItemID, s.OrderIndex,
		s.Weight, s.Reps, s.Distance, s.DurationSec, s.Unit, s.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	return nil
}

// DeleteSet removes a set. Remaining order indexes are not renumbered.
func (db *DB) DeleteSet(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workout_sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	return nil
}

// MaxOrderIndex returns the highest order index in a session, 0 if none.
func (db *DB) MaxOrderIndex(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var max int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index), 0) FROM workout_sets WHERE session_id = $1`,
		sessionID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max order index: %w", err)
	}
	return max, nil
}

// UpdateSetCompleted toggles a set's completion flag and records the
// performed weight/reps.
func (db *DB) UpdateSetCompleted(ctx context.Context, id uuid.UUID, weight float64, reps int, completed bool) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets SET weight = $2, reps = $3, is_completed = $4 WHERE id = $1`,
		id, weight, reps, completed)
	if err != nil {
		return fmt.Errorf("updating set: %w", err)
	}
	return nil
}

// QuerySetsBySession retrieves a session's sets in order, joined to
// exercise data.
func (db *DB) QuerySetsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.SetDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setDetailColumns+`
		 FROM workout_sets ws
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.session_id = $1
		 ORDER BY ws.order_index ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetDetail
	for rows.Next() {
		d, err := scanSetDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
