package mining

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

func offlineSettings() *models.MiningSettings {
	return &models.MiningSettings{
		EnableStreakBonus:        true,
		StreakBonusPercentPerDay: 0.05,
		MaxStreakDays:            10,
		HourlyRewardAmount:       1.0,
	}
}

func TestBuildOfflineCredit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Five hours with streak day 3", func(t *testing.T) {
		events, summary, err := BuildOfflineCredit("u1", 5, 1.0, 3, offlineSettings(), "batch-1", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Hours != 5 {
			t.Errorf("hours = %d, want 5", summary.Hours)
		}
		if !almostEqual(summary.BaseReward, 5.0) {
			t.Errorf("base reward = %v, want 5.0", summary.BaseReward)
		}
		if !almostEqual(summary.StreakBonus, 0.75) {
			t.Errorf("streak bonus = %v, want 0.75", summary.StreakBonus)
		}
		if len(events) != 5 {
			t.Fatalf("expected 5 events, got %d", len(events))
		}

		for i, e := range events {
			if !almostEqual(e.BaseAmount, 1.0) {
				t.Errorf("event %d base = %v, want 1.0", i, e.BaseAmount)
			}
			if !almostEqual(e.BonusAmount, 0.15) {
				t.Errorf("event %d bonus = %v, want 0.15", i, e.BonusAmount)
			}
			if e.Source != models.SourceOffline {
				t.Errorf("event %d source = %s, want offline", i, e.Source)
			}
			if e.BatchID != "batch-1" {
				t.Errorf("event %d batch id = %s", i, e.BatchID)
			}
		}

		// Hourly timestamps counting backward, last event landing on now.
		if !events[len(events)-1].Timestamp.Equal(now) {
			t.Errorf("last event at %v, want %v", events[len(events)-1].Timestamp, now)
		}
		if !events[0].Timestamp.Equal(now.Add(-4 * time.Hour)) {
			t.Errorf("first event at %v, want %v", events[0].Timestamp, now.Add(-4*time.Hour))
		}
	})

	t.Run("Conservation over the batch", func(t *testing.T) {
		events, summary, err := BuildOfflineCredit("u1", 17.9, 1.5, 7, offlineSettings(), "batch-2", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var sumBase, sumBonus float64
		for _, e := range events {
			sumBase += e.BaseAmount
			sumBonus += e.BonusAmount
		}
		if !almostEqual(sumBase, summary.BaseReward) {
			t.Errorf("sum of event bases %v != summary base %v", sumBase, summary.BaseReward)
		}
		if math.Abs(sumBonus-summary.StreakBonus) > 1e-9 {
			t.Errorf("sum of event bonuses %v != aggregate bonus %v", sumBonus, summary.StreakBonus)
		}
		if summary.Hours != 17 {
			t.Errorf("17.9 elapsed hours should quantize to 17, got %d", summary.Hours)
		}
	})

	t.Run("Clamped to 24 hours", func(t *testing.T) {
		events, summary, err := BuildOfflineCredit("u1", 100, 1.0, 1, offlineSettings(), "batch-3", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Hours != MaxOfflineHours {
			t.Errorf("hours = %d, want %d", summary.Hours, MaxOfflineHours)
		}
		if len(events) != MaxOfflineHours {
			t.Errorf("expected %d events, got %d", MaxOfflineHours, len(events))
		}
	})

	t.Run("Streak day 1 earns no streak bonus", func(t *testing.T) {
		events, summary, err := BuildOfflineCredit("u1", 6, 1.0, 1, offlineSettings(), "batch-4", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.StreakBonus != 0 {
			t.Errorf("streak bonus = %v, want 0", summary.StreakBonus)
		}
		for _, e := range events {
			if e.BonusType != models.BonusNone {
				t.Errorf("bonus type = %s, want none", e.BonusType)
			}
		}
	})

	t.Run("Invalid hours rejected", func(t *testing.T) {
		for _, hours := range []float64{0, -3, 0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, _, err := BuildOfflineCredit("u1", hours, 1.0, 1, offlineSettings(), "b", now)
			if !errors.Is(err, ErrInvalidHours) {
				t.Errorf("hours %v: expected ErrInvalidHours, got %v", hours, err)
			}
		}
	})

	t.Run("Mining rate scales the hourly base", func(t *testing.T) {
		_, summary, err := BuildOfflineCredit("u1", 4, 2.0, 1, offlineSettings(), "b", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(summary.BaseReward, 8.0) {
			t.Errorf("base reward = %v, want 8.0", summary.BaseReward)
		}
	})
}
