package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, user_id, name, date, start_time, duration_sec, is_completed, notes`

func scanSession(row pgx.Row) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Date, &s.StartTime,
		&s.DurationSec, &s.IsCompleted, &s.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// InsertSession inserts a session row.
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (`+sessionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.UserID, s.Name, s.Date, s.StartTime, s.DurationSec, s.IsCompleted, s.Notes)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// InsertSessionWithSets inserts a session and its materialized sets in one
// transaction. Materialization is all-or-nothing: no reader ever observes a
// session with part of its seed sets.
func (db *DB) InsertSessionWithSets(ctx context.Context, s models.WorkoutSession, sets []models.WorkoutSet) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions (`+sessionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.UserID, s.Name, s.Date, s.StartTime, s.DurationSec, s.IsCompleted, s.Notes)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, set := range sets {
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_sets (id, session_id, exercise_id, routine_item_id, order_index,
			 weight, reps, distance, duration_sec, unit, is_completed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			set.ID, set.SessionID, set.ExerciseID, set.RoutineItemID, set.OrderIndex,
			set.Weight, set.Reps, set.Distance, set.DurationSec, set.Unit, set.IsCompleted)
		if err != nil {
			return fmt.Errorf("inserting seed set %d: %w", set.OrderIndex, err)
		}
	}

	return tx.Commit(ctx)
}

// FindOpenSession retrieves the user's unfinished session, or ErrNotFound.
func (db *DB) FindOpenSession(ctx context.Context, userID int) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE user_id = $1 AND NOT is_completed
		 ORDER BY date DESC LIMIT 1`, userID)

	s, err := scanSession(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("querying open session: %w", err)
	}
	return s, err
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1`, id)

	s, err := scanSession(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, err
}

// FinishSession marks a session completed with its final duration. The
// duration is captured once here and never recomputed.
func (db *DB) FinishSession(ctx context.Context, id uuid.UUID, durationSec int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET is_completed = TRUE, duration_sec = $2 WHERE id = $1`,
		id, durationSec)
	if err != nil {
		return fmt.Errorf("finishing session: %w", err)
	}
	return nil
}

// DeleteSession removes a session; its sets go with it (ON DELETE CASCADE).
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ListSessions retrieves completed and open sessions in a date range,
// newest first.
func (db *DB) ListSessions(ctx context.Context, start, end time.Time, userID, limit, offset int) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC
		 LIMIT $4 OFFSET $5`,
		userID, start, end, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		var s models.WorkoutSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Date, &s.StartTime,
			&s.DurationSec, &s.IsCompleted, &s.Notes); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSessionDetail retrieves one session with its sets joined to exercise data.
func (db *DB) GetSessionDetail(ctx context.Context, id uuid.UUID) (*models.SessionDetail, error) {
	s, err := db.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	sets, err := db.QuerySetsBySession(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.SessionDetail{Session: *s, Sets: sets}, nil
}

// QuerySessionHistory retrieves sessions with their sets in a date range,
// newest first. This is the read-side feed for the analytics aggregator and
// the CSV exporter.
func (db *DB) QuerySessionHistory(ctx context.Context, start, end time.Time, userID int) ([]models.SessionDetail, error) {
	sessions, err := db.ListSessions(ctx, start, end, userID, 10000, 0)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+setDetailColumns+`
		 FROM workout_sets ws
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.session_id = ANY($1)
		 ORDER BY ws.order_index ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying history sets: %w", err)
	}
	defer rows.Close()

	bySession := make(map[uuid.UUID][]models.SetDetail, len(sessions))
	for rows.Next() {
		d, err := scanSetDetail(rows)
		if err != nil {
			return nil, err
		}
		bySession[d.SessionID] = append(bySession[d.SessionID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]models.SessionDetail, len(sessions))
	for i, s := range sessions {
		result[i] = models.SessionDetail{Session: s, Sets: bySession[s.ID]}
	}
	return result, nil
}
