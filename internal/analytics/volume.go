// Package analytics derives read-side views (volume, streaks, estimated
// 1RM progression, weekly paging) from logged session history. Everything
// here is a pure function over its inputs; nothing mutates the store.
package analytics

import (
	"github.com/claude/replog/internal/models"
)

// TotalVolume sums weight-in-pounds times reps across all sets in the given
// sessions. Metric weights are converted at models.LbsPerKg.
//
// Any set carrying a distance value is excluded, regardless of its
// exercise's type. The distance-presence predicate (rather than
// exercise-type) is deliberate: a strength set that somehow recorded a
// distance is left out of tonnage rather than skewing it.
func TotalVolume(sessions []models.SessionDetail) float64 {
	var total float64
	for _, s := range sessions {
		total += SessionVolume(s)
	}
	return total
}

// SessionVolume is TotalVolume for a single session.
func SessionVolume(s models.SessionDetail) float64 {
	var total float64
	for _, set := range s.Sets {
		if set.Distance != nil {
			continue
		}
		total += set.Unit.WeightLbs(set.Weight) * float64(set.Reps)
	}
	return total
}
