package mcp

import (
	"context"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySessionHistory(ctx context.Context, start, end time.Time, userID int) ([]models.SessionDetail, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ListRoutines(ctx context.Context, userID int) ([]models.Routine, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
