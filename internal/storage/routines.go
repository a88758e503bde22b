package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertRoutineGraph inserts a routine with its items and templates in one
// transaction.
func (db *DB) InsertRoutineGraph(ctx context.Context, g models.RoutineGraph) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	r := g.Routine
	_, err = tx.Exec(ctx,
		`INSERT INTO routines (id, user_id, name, note) VALUES ($1,$2,$3,$4)`,
		r.ID, r.UserID, r.Name, r.Note)
	if err != nil {
		return fmt.Errorf("inserting routine: %w", err)
	}

	for _, node := range g.Items {
		item := node.Item
		var supersetID *uuid.UUID
		if gid, ok := item.Superset.Group(); ok {
			supersetID = &gid
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO routine_items (id, routine_id, exercise_id, order_index, note, superset_id)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			item.ID, r.ID, item.ExerciseID, item.OrderIndex, item.Note, supersetID)
		if err != nil {
			return fmt.Errorf("inserting routine item %d: %w", item.OrderIndex, err)
		}

		for _, tmpl := range node.Templates {
			_, err = tx.Exec(ctx,
				`INSERT INTO routine_set_templates (id, routine_item_id, order_index, target_reps)
				 VALUES ($1,$2,$3,$4)`,
				tmpl.ID, item.ID, tmpl.OrderIndex, tmpl.TargetReps)
			if err != nil {
				return fmt.Errorf("inserting set template %d: %w", tmpl.OrderIndex, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// GetRoutineGraph loads a routine with its items (in order), each item's
// exercise, and its templates (in order). An item whose exercise row is
// missing comes back with a nil Exercise; the materializer skips those.
func (db *DB) GetRoutineGraph(ctx context.Context, id uuid.UUID) (*models.RoutineGraph, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, note FROM routines WHERE id = $1`, id)

	var g models.RoutineGraph
	if err := row.Scan(&g.Routine.ID, &g.Routine.UserID, &g.Routine.Name, &g.Routine.Note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying routine: %w", err)
	}

	itemRows, err := db.Pool.Query(ctx,
		`SELECT ri.id, ri.routine_id, ri.exercise_id, ri.order_index, ri.note, ri.superset_id,
		        e.id, e.name, e.type, e.muscle_group
		 FROM routine_items ri
		 LEFT JOIN exercises e ON e.id = ri.exercise_id
		 WHERE ri.routine_id = $1
		 ORDER BY ri.order_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying routine items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var node models.RoutineItemNode
		var supersetID *uuid.UUID
		var exID *uuid.UUID
		var exName, exMuscle *string
		var exType *models.ExerciseType

		err := itemRows.Scan(&node.Item.ID, &node.Item.RoutineID, &node.Item.ExerciseID,
			&node.Item.OrderIndex, &node.Item.Note, &supersetID,
			&exID, &exName, &exType, &exMuscle)
		if err != nil {
			return nil, fmt.Errorf("scanning routine item: %w", err)
		}
		if supersetID != nil {
			node.Item.Superset = models.PartOfSuperset(*supersetID)
		}
		if exID != nil {
			node.Exercise = &models.Exercise{
				ID: *exID, Name: *exName, Type: *exType, MuscleGroup: *exMuscle,
			}
		}
		g.Items = append(g.Items, node)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range g.Items {
		tmplRows, err := db.Pool.Query(ctx,
			`SELECT id, routine_item_id, order_index, target_reps
			 FROM routine_set_templates
			 WHERE routine_item_id = $1
			 ORDER BY order_index ASC`, g.Items[i].Item.ID)
		if err != nil {
			return nil, fmt.Errorf("querying set templates: %w", err)
		}

		for tmplRows.Next() {
			var t models.RoutineSetTemplate
			if err := tmplRows.Scan(&t.ID, &t.RoutineItemID, &t.OrderIndex, &t.TargetReps); err != nil {
				tmplRows.Close()
				return nil, fmt.Errorf("scanning set template: %w", err)
			}
			g.Items[i].Templates = append(g.Items[i].Templates, t)
		}
		err = tmplRows.Err()
		tmplRows.Close()
		if err != nil {
			return nil, err
		}
	}

	return &g, nil
}

// ListRoutines retrieves a user's routines ordered by name.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, note FROM routines WHERE user_id = $1 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Note); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteRoutine removes a routine; its items and templates cascade. The
// exercises its items reference are untouched.
func (db *DB) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM routines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	return nil
}

// DeleteSetTemplate removes one template and re-compacts the remaining
// order indexes of its item to 0..n-1, in one transaction.
func (db *DB) DeleteSetTemplate(ctx context.Context, id uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var itemID uuid.UUID
	err = tx.QueryRow(ctx,
		`DELETE FROM routine_set_templates WHERE id = $1 RETURNING routine_item_id`,
		id).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting set template: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE routine_set_templates t
		 SET order_index = ranked.rn
		 FROM (
		     SELECT id, ROW_NUMBER() OVER (ORDER BY order_index ASC) - 1 AS rn
		     FROM routine_set_templates
		     WHERE routine_item_id = $1
		 ) ranked
		 WHERE t.id = ranked.id`, itemID)
	if err != nil {
		return fmt.Errorf("recompacting template order: %w", err)
	}

	return tx.Commit(ctx)
}
