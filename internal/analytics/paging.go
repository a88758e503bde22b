package analytics

import (
	"time"

	"github.com/claude/replog/internal/models"
)

// Weeks are Monday-aligned throughout.

const (
	// ConsistencyWeeks is how many trailing week-pages the consistency
	// view shows, the last being the current week.
	ConsistencyWeeks = 5
	// VolumeBlocks is how many trailing 4-week blocks the volume view
	// shows.
	VolumeBlocks = 3
	// WeeksPerBlock is the width of one volume block.
	WeeksPerBlock = 4
)

// WeekStart returns the Monday 00:00 of t's week.
func WeekStart(t time.Time) time.Time {
	d := dateOf(t)
	back := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -back)
}

// WeekPage is one 7-day window of the consistency view.
type WeekPage struct {
	Start        time.Time `json:"start"`
	SessionCount int       `json:"session_count"`
	ActiveDays   int       `json:"active_days"`
}

// ConsistencyPages returns the trailing week-pages, oldest to newest, the
// last covering the current week.
func ConsistencyPages(sessions []models.SessionDetail, now time.Time) []WeekPage {
	loc := now.Location()
	current := WeekStart(now.In(loc))

	pages := make([]WeekPage, ConsistencyWeeks)
	for i := range pages {
		pages[i].Start = current.AddDate(0, 0, -7*(ConsistencyWeeks-1-i))
	}

	days := make(map[time.Time]map[time.Time]bool) // week start -> active days
	for _, s := range sessions {
		d := dateOf(s.Session.Date.In(loc))
		w := WeekStart(d)
		idx := weekIndex(pages, w)
		if idx < 0 {
			continue
		}
		pages[idx].SessionCount++
		if days[w] == nil {
			days[w] = make(map[time.Time]bool)
		}
		days[w][d] = true
	}
	for i := range pages {
		pages[i].ActiveDays = len(days[pages[i].Start])
	}
	return pages
}

func weekIndex(pages []WeekPage, weekStart time.Time) int {
	for i, p := range pages {
		if p.Start.Equal(weekStart) {
			return i
		}
	}
	return -1
}

// VolumeBlock is one 4-week window of the volume view.
type VolumeBlock struct {
	Start     time.Time `json:"start"`
	VolumeLbs float64   `json:"volume_lbs"`
}

// VolumePages returns the trailing 4-week volume blocks, oldest to newest,
// the last block ending with the current week.
func VolumePages(sessions []models.SessionDetail, now time.Time) []VolumeBlock {
	loc := now.Location()
	current := WeekStart(now.In(loc))

	blocks := make([]VolumeBlock, VolumeBlocks)
	for i := range blocks {
		weeksBack := WeeksPerBlock*(VolumeBlocks-i) - 1
		blocks[i].Start = current.AddDate(0, 0, -7*weeksBack)
	}

	for _, s := range sessions {
		d := dateOf(s.Session.Date.In(loc))
		for i := len(blocks) - 1; i >= 0; i-- {
			if !d.Before(blocks[i].Start) {
				if d.Before(blocks[i].Start.AddDate(0, 0, 7*WeeksPerBlock)) {
					blocks[i].VolumeLbs += SessionVolume(s)
				}
				break
			}
		}
	}
	return blocks
}
