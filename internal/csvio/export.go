package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/claude/replog/internal/models"
)

// Export writes sessions as interchange CSV: header row, then one row per
// set, sessions kept contiguous. Set numbers count per exercise within a
// session, in logged order.
func Export(w io.Writer, sessions []models.SessionDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range sessions {
		date := s.Session.Date.Format(dateLayout)
		minutes := strconv.FormatInt(s.Session.DurationSec/60, 10)

		perExercise := make(map[string]int)
		for _, set := range s.Sets {
			perExercise[set.ExerciseName]++

			record := []string{
				date,
				s.Session.Name,
				minutes,
				set.ExerciseName,
				strconv.Itoa(perExercise[set.ExerciseName]),
				formatFloat(set.Weight),
				strconv.Itoa(set.Reps),
				formatOptional(set.Distance),
				formatOptional(set.DurationSec),
				string(set.Unit),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing set row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
