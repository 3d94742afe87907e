package mining

import (
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

// Streak continuation window and bonus bounds
const (
	// The continuation window is a 20-28 hour band around the nominal 24h
	// cadence, so clients claiming slightly early or late keep their streak.
	StreakWindowMinHours = 20.0
	StreakWindowMaxHours = 28.0

	// Hard cap on the streak bonus, regardless of configured per-day percent.
	StreakBonusCap = 0.5

	DefaultStreakPercentPerDay = 0.05
)

// NextStreakDay derives the streak day for a claim at now, given the user's
// most recent manual ledger event. No prior manual event means day 1. A gap
// inside the continuation window continues the streak; anything outside it
// resets to 1. Gaps under 20h are normally unreachable because the daily
// duplicate gate rejects the claim first.
func NextStreakDay(last *models.RewardEvent, now time.Time) int {
	if last == nil {
		return 1
	}
	hours := now.Sub(last.Timestamp).Hours()
	if hours >= StreakWindowMinHours && hours <= StreakWindowMaxHours {
		return last.StreakDay + 1
	}
	return 1
}

// StreakPercent computes the streak bonus fraction for a given streak day.
// Day 1 carries no streak bonus. The effective day is capped by
// MaxStreakDays and the resulting percent by the 50% hard cap.
func StreakPercent(streakDay int, s *models.MiningSettings) float64 {
	if streakDay <= 1 {
		return 0
	}
	effective := streakDay
	if s.MaxStreakDays > 0 && effective > s.MaxStreakDays {
		effective = s.MaxStreakDays
	}
	perDay := s.StreakBonusPercentPerDay
	if perDay <= 0 {
		perDay = DefaultStreakPercentPerDay
	}
	percent := float64(effective) * perDay
	if percent > StreakBonusCap {
		percent = StreakBonusCap
	}
	return percent
}
