// Package mcp exposes the training log's read side to AI assistants over
// the Model Context Protocol. Everything here is read-only: assistants can
// inspect sessions, analytics, and routines, but mutation happens only
// through the REST API.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/claude/replog/internal/analytics"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepLog strength training log. Query workout sessions, set history, training volume, streaks, and estimated 1RM progressions. All data belongs to a single user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetTrainingProfile, Handler: h.getTrainingProfile},
		server.ServerTool{Tool: toolGetVolumeTrend, Handler: h.getVolumeTrend},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resTrainingProfile, Handler: h.trainingProfile},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"replog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 14 days with their logged sets"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingProfile = mcp.NewResource(
	"replog://training_profile",
	"Training Profile",
	mcp.WithResourceDescription("Summary of the last 6 months: session count, total volume, streak, top muscle groups, recent bests"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	history, err := h.ds.QuerySessionHistory(ctx, start, end, defaultUserID)
	if err != nil {
		return nil, err
	}

	return jsonResource(req.Params.URI, history)
}

func (h *handlers) trainingProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	now := time.Now()
	history, err := h.ds.QuerySessionHistory(ctx, now.AddDate(0, -6, 0), now, defaultUserID)
	if err != nil {
		return nil, err
	}

	return jsonResource(req.Params.URI, analytics.BuildProfile(history, now))
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
