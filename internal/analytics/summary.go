package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
)

const (
	// RecentWindow bounds the top-N summaries to the most recent sessions.
	RecentWindow = 15
	// TopN is how many entries the ranked summaries return.
	TopN = 5
)

// MuscleGroupCount is one entry of the muscle-group frequency ranking.
type MuscleGroupCount struct {
	MuscleGroup string `json:"muscle_group"`
	SetCount    int    `json:"set_count"`
}

// TopMuscleGroups ranks muscle groups by set frequency over the last
// RecentWindow sessions (input newest-first). Ties keep first-seen order:
// the fold over the set log is stable.
func TopMuscleGroups(sessions []models.SessionDetail) []MuscleGroupCount {
	recent := clampWindow(sessions)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, s := range recent {
		for _, set := range s.Sets {
			g := set.MuscleGroup
			if g == "" {
				continue
			}
			if _, seen := firstSeen[g]; !seen {
				firstSeen[g] = order
				order++
			}
			counts[g]++
		}
	}

	ranked := make([]MuscleGroupCount, 0, len(counts))
	for g, c := range counts {
		ranked = append(ranked, MuscleGroupCount{MuscleGroup: g, SetCount: c})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SetCount != ranked[j].SetCount {
			return ranked[i].SetCount > ranked[j].SetCount
		}
		return firstSeen[ranked[i].MuscleGroup] < firstSeen[ranked[j].MuscleGroup]
	})

	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// ExerciseBest is one entry of the recent-bests ranking.
type ExerciseBest struct {
	ExerciseName string    `json:"exercise_name"`
	BestLbs      float64   `json:"best_lbs"`
	Date         time.Time `json:"date"`
}

// RecentBests ranks exercises by best estimated 1RM over the last
// RecentWindow sessions (input newest-first). Ties keep first-seen order,
// so the most recent achievement wins an equal max.
func RecentBests(sessions []models.SessionDetail) []ExerciseBest {
	recent := clampWindow(sessions)

	bests := make(map[string]ExerciseBest)
	firstSeen := make(map[string]int)
	order := 0
	for _, s := range recent {
		for _, set := range s.Sets {
			if set.Distance != nil {
				continue
			}
			key := strings.ToLower(set.ExerciseName)
			if _, seen := firstSeen[key]; !seen {
				firstSeen[key] = order
				order++
			}
			est := EstimateOneRepMax(set.Unit.WeightLbs(set.Weight), set.Reps)
			if cur, ok := bests[key]; !ok || est > cur.BestLbs {
				bests[key] = ExerciseBest{
					ExerciseName: set.ExerciseName,
					BestLbs:      est,
					Date:         s.Session.Date,
				}
			}
		}
	}

	ranked := make([]ExerciseBest, 0, len(bests))
	for _, b := range bests {
		ranked = append(ranked, b)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].BestLbs != ranked[j].BestLbs {
			return ranked[i].BestLbs > ranked[j].BestLbs
		}
		return firstSeen[strings.ToLower(ranked[i].ExerciseName)] < firstSeen[strings.ToLower(ranked[j].ExerciseName)]
	})

	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

func clampWindow(sessions []models.SessionDetail) []models.SessionDetail {
	if len(sessions) > RecentWindow {
		return sessions[:RecentWindow]
	}
	return sessions
}

// TrainingProfile is the read-only summary shared with AI collaborators.
type TrainingProfile struct {
	SessionCount   int                `json:"session_count"`
	FirstSession   *time.Time         `json:"first_session,omitempty"`
	LastSession    *time.Time         `json:"last_session,omitempty"`
	TotalVolumeLbs float64            `json:"total_volume_lbs"`
	StreakDays     int                `json:"streak_days"`
	TopMuscles     []MuscleGroupCount `json:"top_muscle_groups"`
	RecentBests    []ExerciseBest     `json:"recent_bests"`
}

// BuildProfile assembles a TrainingProfile from session history sorted
// newest-first.
func BuildProfile(sessions []models.SessionDetail, now time.Time) TrainingProfile {
	p := TrainingProfile{
		SessionCount:   len(sessions),
		TotalVolumeLbs: TotalVolume(sessions),
		StreakDays:     CurrentStreak(sessions, now),
		TopMuscles:     TopMuscleGroups(sessions),
		RecentBests:    RecentBests(sessions),
	}
	if len(sessions) > 0 {
		last := sessions[0].Session.Date
		first := sessions[len(sessions)-1].Session.Date
		p.LastSession = &last
		p.FirstSession = &first
	}
	return p
}

// Describe renders the profile as the plain text block handed to the AI
// advisory collaborator.
func (p TrainingProfile) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sessions logged: %d\n", p.SessionCount)
	if p.FirstSession != nil && p.LastSession != nil {
		fmt.Fprintf(&b, "Training from %s to %s\n",
			p.FirstSession.Format("2006-01-02"), p.LastSession.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Total volume: %.0f lbs\n", p.TotalVolumeLbs)
	fmt.Fprintf(&b, "Current streak: %d days\n", p.StreakDays)
	if len(p.TopMuscles) > 0 {
		b.WriteString("Most trained muscle groups:")
		for _, g := range p.TopMuscles {
			fmt.Fprintf(&b, " %s (%d sets)", g.MuscleGroup, g.SetCount)
		}
		b.WriteString("\n")
	}
	if len(p.RecentBests) > 0 {
		b.WriteString("Recent bests (est. 1RM):")
		for _, e := range p.RecentBests {
			fmt.Fprintf(&b, " %s %.0f lbs", e.ExerciseName, e.BestLbs)
		}
		b.WriteString("\n")
	}
	return b.String()
}
