package analytics

import (
	"time"

	"github.com/claude/replog/internal/models"
)

// CurrentStreak counts consecutive calendar days, walking backward from the
// most recent logged day, that contain at least one session. The streak is
// 0 when the most recent logged day is neither today nor yesterday relative
// to now: a streak that lapsed is over, not paused.
func CurrentStreak(sessions []models.SessionDetail, now time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[time.Time]bool, len(sessions))
	var latest time.Time
	for _, s := range sessions {
		d := dateOf(s.Session.Date.In(loc))
		days[d] = true
		if d.After(latest) {
			latest = d
		}
	}

	today := dateOf(now)
	if latest.Before(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 0
	for d := latest; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// dateOf truncates to the local calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
