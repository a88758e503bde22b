package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/claude/replog/internal/csvio"
	"github.com/claude/replog/internal/storage"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := s.db.QuerySessionHistory(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="replog-export.csv"`)
	if err := csvio.Export(w, history); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	// Parse fully before touching the store: a malformed file writes nothing.
	parsed, err := csvio.Parse(r.Body)
	if err != nil {
		s.logImport("http", nil, err, int(time.Since(started).Milliseconds()))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imp := csvio.NewImporter(s.db, defaultUserID, false, s.log)
	stats, err := imp.Apply(r.Context(), parsed)
	if err != nil {
		s.logImport("http", stats, err, int(time.Since(started).Milliseconds()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logImport("http", stats, nil, int(time.Since(started).Milliseconds()))
	writeJSON(w, http.StatusOK, map[string]int{
		"sessions_inserted": stats.SessionsInserted,
		"sets_inserted":     stats.SetsInserted,
		"exercises_created": stats.ExercisesCreated,
	})
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := s.db.QueryImportLogs(r.Context(), defaultUserID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(source string, stats *csvio.Stats, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	entry := storage.ImportLog{
		UserID:       defaultUserID,
		Source:       source,
		Status:       status,
		DurationMs:   &durationMs,
		ErrorMessage: errMsg,
	}
	if stats != nil {
		entry.SessionsInserted = stats.SessionsInserted
		entry.SetsInserted = stats.SetsInserted
		entry.ExercisesCreated = stats.ExercisesCreated
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}
