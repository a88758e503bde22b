package analytics

import (
	"testing"
	"time"

	"github.com/claude/replog/internal/models"
)

func day(offset int, now time.Time) time.Time {
	return now.AddDate(0, 0, offset)
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	sessions := []models.SessionDetail{
		session(day(0, now)),
		session(day(-1, now)),
		session(day(-2, now)),
		session(day(-5, now)), // gap before this one
	}

	if got := CurrentStreak(sessions, now); got != 3 {
		t.Errorf("streak = %d, want 3", got)
	}
}

// TestStreakSurvivesYesterdayLatest verifies a streak whose latest day is
// yesterday still counts; the user has until end of today to extend it.
func TestStreakSurvivesYesterdayLatest(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []models.SessionDetail{
		session(day(-1, now)),
		session(day(-2, now)),
	}

	if got := CurrentStreak(sessions, now); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}

// TestStreakLapsed verifies a latest day older than yesterday yields 0, no
// matter how long the historical run was.
func TestStreakLapsed(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []models.SessionDetail{
		session(day(-3, now)),
		session(day(-4, now)),
		session(day(-5, now)),
		session(day(-6, now)),
	}

	if got := CurrentStreak(sessions, now); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestStreakEmptyHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	if got := CurrentStreak(nil, now); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

// TestStreakMultipleSessionsSameDay verifies a day counts once regardless
// of how many sessions it holds.
func TestStreakMultipleSessionsSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	sessions := []models.SessionDetail{
		session(now.Add(-2 * time.Hour)),
		session(now.Add(-8 * time.Hour)),
		session(day(-1, now)),
	}

	if got := CurrentStreak(sessions, now); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}
