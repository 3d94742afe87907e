package mining

import (
	"math"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

// MaxOfflineHours bounds how far back an offline reconciliation may reach.
const MaxOfflineHours = 24

// OfflineSummary aggregates one offline reconciliation.
type OfflineSummary struct {
	Hours       int
	BaseReward  float64
	StreakBonus float64
	TotalReward float64
}

// ValidateOfflineHours rejects hour counts that cannot yield at least one
// whole-hour bucket: non-positive, non-finite, or under an hour.
func ValidateOfflineHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 1 {
		return ErrInvalidHours
	}
	return nil
}

// BuildOfflineCredit generates the hourly ledger events back-filling rewards
// for elapsed offline time. Hours are quantized to whole-hour buckets and
// clamped to MaxOfflineHours. Timestamps count backward from now at one-hour
// intervals, the last event landing on now. When streak bonuses are enabled,
// one aggregate streak bonus is computed over the whole batch and spread
// evenly across the events rather than recomputed per hour.
//
// The returned events are not persisted here; the caller appends them in a
// single transaction so a failure rolls back the whole batch.
func BuildOfflineCredit(
	userID string,
	hoursElapsed float64,
	miningRate float64,
	streakDay int,
	s *models.MiningSettings,
	batchID string,
	now time.Time,
) ([]models.RewardEvent, OfflineSummary, error) {
	if err := ValidateOfflineHours(hoursElapsed); err != nil {
		return nil, OfflineSummary{}, err
	}

	capped := int(math.Floor(hoursElapsed))
	if capped > MaxOfflineHours {
		capped = MaxOfflineHours
	}

	basePerHour := s.HourlyRewardAmount * miningRate
	totalBase := basePerHour * float64(capped)

	streakBonus := 0.0
	if s.EnableStreakBonus {
		streakBonus = totalBase * StreakPercent(streakDay, s)
	}
	bonusPerHour := streakBonus / float64(capped)

	bonusType := models.BonusNone
	if bonusPerHour > 0 {
		bonusType = models.BonusStreak
	}

	events := make([]models.RewardEvent, 0, capped)
	for i := 1; i <= capped; i++ {
		events = append(events, models.RewardEvent{
			UserID:      userID,
			BaseAmount:  basePerHour,
			BonusAmount: bonusPerHour,
			BonusType:   bonusType,
			StreakDay:   streakDay,
			Source:      models.SourceOffline,
			Timestamp:   now.Add(-time.Duration(capped-i) * time.Hour),
			BatchID:     batchID,
		})
	}

	summary := OfflineSummary{
		Hours:       capped,
		BaseReward:  totalBase,
		StreakBonus: streakBonus,
		TotalReward: totalBase + streakBonus,
	}
	return events, summary, nil
}
