// Package csvio reads and writes the session log's file interchange
// format: a fixed 10-column CSV with one row per set, rows grouped by
// session.
package csvio

import (
	"fmt"
	"time"

	"github.com/claude/replog/internal/models"
)

// Header is the fixed column layout. Every export starts with it and every
// import skips it.
var Header = []string{
	"Date", "WorkoutName", "DurationMinutes", "Exercise", "SetNumber",
	"Weight", "Reps", "Distance", "Time", "Unit",
}

const dateLayout = "2006-01-02"

// Row is one parsed CSV line (one set).
type Row struct {
	Date            time.Time
	WorkoutName     string
	DurationMinutes int
	Exercise        string
	SetNumber       int
	Weight          float64
	Reps            int
	Distance        *float64
	TimeSec         *float64
	Unit            models.Unit
}

// ParsedSession is a contiguous run of rows sharing the same (date, name)
// key: one workout session with its sets in file order.
type ParsedSession struct {
	Date            time.Time
	Name            string
	DurationMinutes int
	Rows            []Row
}

// IsCardio reports whether a row records distance/time rather than
// weight/reps.
func (r Row) IsCardio() bool {
	return r.Distance != nil || r.TimeSec != nil
}

func parseUnit(s string) (models.Unit, error) {
	switch models.Unit(s) {
	case models.Kilograms, models.Pounds, models.Kilometer, models.Mile:
		return models.Unit(s), nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}
