package analytics

import (
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
)

// EstimateOneRepMax applies the Epley formula to a weight already
// normalized to pounds: a single rep is taken at face value, otherwise
// weight x (1 + reps/30).
func EstimateOneRepMax(weightLbs float64, reps int) float64 {
	if reps == 1 {
		return weightLbs
	}
	return weightLbs * (1 + float64(reps)/30)
}

// ProgressionPoint is one session's best estimated 1RM for an exercise.
type ProgressionPoint struct {
	Date        time.Time `json:"date"`
	SessionName string    `json:"session_name"`
	MaxLbs      float64   `json:"max_lbs"`
}

// ExerciseProgression computes, per session, the maximum estimated 1RM
// across that session's sets for the named exercise (case-insensitive).
// Sessions with no matching sets are omitted. Order follows the input.
func ExerciseProgression(sessions []models.SessionDetail, exerciseName string) []ProgressionPoint {
	var points []ProgressionPoint
	for _, s := range sessions {
		best, found := sessionBest(s, exerciseName)
		if !found {
			continue
		}
		points = append(points, ProgressionPoint{
			Date:        s.Session.Date,
			SessionName: s.Session.Name,
			MaxLbs:      best,
		})
	}
	return points
}

func sessionBest(s models.SessionDetail, exerciseName string) (float64, bool) {
	var best float64
	found := false
	for _, set := range s.Sets {
		if !strings.EqualFold(set.ExerciseName, exerciseName) {
			continue
		}
		est := EstimateOneRepMax(set.Unit.WeightLbs(set.Weight), set.Reps)
		if !found || est > best {
			best = est
			found = true
		}
	}
	return best, found
}
