package repository

import (
	"context"
	"testing"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

func defaultTestSettings() *models.MiningSettings {
	return &models.MiningSettings{
		EnableStreakBonus:         true,
		StreakBonusPercentPerDay:  0.05,
		MaxStreakDays:             10,
		StreakExpirationHours:     28,
		EnableDailyBonus:          true,
		DailyBonusChance:          0.1,
		EnableAutomaticMining:     true,
		HourlyRewardAmount:        0.1,
		DailyActivationRequired:   true,
		ActivationExpirationHours: 24,
	}
}

func TestSettingsSeedAndGet(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsRepository(db)
	ctx := context.Background()

	if err := settings.Seed(ctx, defaultTestSettings()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.HourlyRewardAmount != 0.1 {
		t.Errorf("hourly reward = %v, want 0.1", got.HourlyRewardAmount)
	}
	if !got.EnableAutomaticMining {
		t.Error("automatic mining should be enabled by default")
	}

	// Seeding again must not overwrite existing settings.
	other := defaultTestSettings()
	other.HourlyRewardAmount = 99
	if err := settings.Seed(ctx, other); err != nil {
		t.Fatalf("re-seed failed: %v", err)
	}
	got, _ = settings.Get(ctx)
	if got.HourlyRewardAmount != 0.1 {
		t.Errorf("re-seed overwrote settings: hourly reward = %v", got.HourlyRewardAmount)
	}
}

func TestSettingsSeedPersistsDisabledFlags(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsRepository(db)
	ctx := context.Background()

	defaults := defaultTestSettings()
	defaults.EnableAutomaticMining = false
	defaults.EnableStreakBonus = false
	defaults.EnableDailyBonus = false
	defaults.DailyActivationRequired = false
	if err := settings.Seed(ctx, defaults); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.EnableAutomaticMining {
		t.Error("automatic mining should be seeded disabled, column default won")
	}
	if got.EnableStreakBonus {
		t.Error("streak bonus should be seeded disabled, column default won")
	}
	if got.EnableDailyBonus {
		t.Error("daily bonus should be seeded disabled, column default won")
	}
	if got.DailyActivationRequired {
		t.Error("activation requirement should be seeded disabled, column default won")
	}
}

func TestSettingsUpdate(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingsRepository(db)
	ctx := context.Background()

	if err := settings.Seed(ctx, defaultTestSettings()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	updated := defaultTestSettings()
	updated.EnableDailyBonus = false
	updated.DailyBonusChance = 0
	if err := settings.Update(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.EnableDailyBonus {
		t.Error("daily bonus should be disabled after update")
	}
}
