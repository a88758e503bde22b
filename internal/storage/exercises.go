package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

// InsertExercise inserts an exercise. Returns true if inserted, false if a
// same-named exercise already exists.
func (db *DB) InsertExercise(ctx context.Context, e models.Exercise) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, type, muscle_group)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO NOTHING`,
		e.ID, e.Name, e.Type, e.MuscleGroup)
	if err != nil {
		return false, fmt.Errorf("inserting exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetExercise retrieves an exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, type, muscle_group FROM exercises WHERE id = $1`, id)

	var e models.Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.Type, &e.MuscleGroup); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// FindExerciseByName retrieves an exercise by case-insensitive name match.
func (db *DB) FindExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, type, muscle_group FROM exercises WHERE LOWER(name) = LOWER($1)`, name)

	var e models.Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.Type, &e.MuscleGroup); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying exercise by name: %w", err)
	}
	return &e, nil
}

// ListExercises retrieves all exercises ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, type, muscle_group FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
