package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", envOr("REPLOG_URL", "http://localhost:8080"), "base URL of the RepLog server")
	apiKey := flag.String("api-key", os.Getenv("REPLOG_API_KEY"), "API key for authenticated endpoints")
	flag.Parse()

	// Logs go to stderr: stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepLog MCP server starting", "version", Version, "url", *baseURL)

	ds := mcp.NewHTTPClient(*baseURL, *apiKey)
	srv := mcp.New(ds, Version, log)

	if err := server.ServeStdio(srv); err != nil {
		log.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
