package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/csvio"
	"github.com/claude/replog/internal/storage"
)

const defaultUserID = 1

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	importPath := flag.String("path", "", "path to a CSV file or a directory of CSV exports (required)")
	stateDir := flag.String("state-dir", ".", "directory for the import state database")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *importPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: replog-import -config config.yaml -path /path/to/exports [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	files, err := collectCSVFiles(*importPath)
	if err != nil {
		log.Error("failed to scan import path", "path", *importPath, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		log.Info("no CSV files found", "path", *importPath)
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	state, err := csvio.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	imp := csvio.NewImporter(db, defaultUserID, *dryRun, log)

	total := csvio.Stats{}
	processed, skipped, errored := 0, 0, 0

	for _, path := range files {
		stats, err := importFile(ctx, db, imp, state, path, *dryRun, log)
		if err != nil {
			log.Error("file import failed", "file", path, "error", err)
			errored++
			continue
		}
		if stats == nil {
			skipped++
			continue
		}
		processed++
		total.SessionsInserted += stats.SessionsInserted
		total.SetsInserted += stats.SetsInserted
		total.ExercisesCreated += stats.ExercisesCreated
	}

	log.Info("import stats",
		"files_processed", processed,
		"files_skipped", skipped,
		"files_errored", errored,
		"sessions_inserted", total.SessionsInserted,
		"sets_inserted", total.SetsInserted,
		"exercises_created", total.ExercisesCreated,
	)
	if errored > 0 {
		os.Exit(1)
	}
	log.Info("import complete")
}

// importFile parses and applies one CSV file. A nil stats return with a nil
// error means the file was already imported and skipped.
func importFile(ctx context.Context, db *storage.DB, imp *csvio.Importer, state *csvio.StateDB, path string, dryRun bool, log *slog.Logger) (*csvio.Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	hash, err := csvio.HashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	done, err := state.IsImported(filepath.Base(path), info.Size(), hash)
	if err != nil {
		return nil, err
	}
	if done {
		log.Info("already imported, skipping", "file", path)
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The whole file must parse before anything is written.
	sessions, err := csvio.Parse(f)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	stats, err := imp.Apply(ctx, sessions)
	logOutcome(ctx, db, path, stats, started, err, dryRun, log)
	if err != nil {
		return stats, err
	}

	if !dryRun {
		if err := state.MarkImported(filepath.Base(path), info.Size(), hash); err != nil {
			log.Warn("failed to record import state", "file", path, "error", err)
		}
	}

	log.Info("imported file", "file", path,
		"sessions", stats.SessionsInserted, "sets", stats.SetsInserted)
	return stats, nil
}

func logOutcome(ctx context.Context, db *storage.DB, path string, stats *csvio.Stats, started time.Time, applyErr error, dryRun bool, log *slog.Logger) {
	if dryRun {
		return
	}
	entry := storage.ImportLog{
		UserID: defaultUserID,
		Source: filepath.Base(path),
		Status: "success",
	}
	if stats != nil {
		entry.SessionsInserted = stats.SessionsInserted
		entry.SetsInserted = stats.SetsInserted
		entry.ExercisesCreated = stats.ExercisesCreated
	}
	ms := int(time.Since(started).Milliseconds())
	entry.DurationMs = &ms
	if applyErr != nil {
		entry.Status = "failed"
		msg := applyErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := db.InsertImportLog(ctx, entry); err != nil {
		log.Warn("failed to write import log", "error", err)
	}
}

func collectCSVFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
