package mining

import (
	"math/rand"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

// BonusEngine computes streak and daily-random bonuses on top of a base
// reward. The random source is injected so tests can force both branches of
// the daily-bonus draw.
type BonusEngine struct {
	rand func() float64 // uniform in [0,1)
}

// NewBonusEngine creates a bonus engine with the given random source. A nil
// source falls back to math/rand.
func NewBonusEngine(src func() float64) *BonusEngine {
	if src == nil {
		src = rand.Float64
	}
	return &BonusEngine{rand: src}
}

// Compute returns the total bonus amount and its classification for a claim.
// The streak bonus applies only past day 1 and is hard-capped at 50% of the
// base. The daily bonus is an independent draw that, when it fires, adds the
// full base amount again. Both may apply on the same event, in which case
// the type becomes "multiple".
func (e *BonusEngine) Compute(baseAmount float64, streakDay int, s *models.MiningSettings) (float64, string) {
	bonus := 0.0
	bonusType := models.BonusNone

	if s.EnableStreakBonus && streakDay > 1 {
		percent := StreakPercent(streakDay, s)
		if percent > 0 {
			bonus += baseAmount * percent
			bonusType = models.BonusStreak
		}
	}

	if s.EnableDailyBonus && e.rand() < s.DailyBonusChance {
		bonus += baseAmount
		if bonusType == models.BonusStreak {
			bonusType = models.BonusMultiple
		} else {
			bonusType = models.BonusDaily
		}
	}

	return bonus, bonusType
}
