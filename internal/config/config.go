package config

import (
	"os"
	"strconv"

	"github.com/yourusername/token-mine/mining-service/internal/models"
)

type Config struct {
	// Server Configuration
	Port string

	// Database Configuration
	DatabaseURL string

	// Activation sweep
	SweepIntervalMinutes int

	// Default mining settings, used to seed the settings row on first start.
	// Later changes go through the admin settings endpoint, not the env.
	DefaultSettings models.MiningSettings
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SweepIntervalMinutes: getIntEnv("ACTIVATION_SWEEP_MINUTES", 15),

		DefaultSettings: models.MiningSettings{
			EnableStreakBonus:         getBoolEnv("ENABLE_STREAK_BONUS", true),
			StreakBonusPercentPerDay:  getFloatEnv("STREAK_BONUS_PERCENT_PER_DAY", 0.05),
			MaxStreakDays:             getIntEnv("MAX_STREAK_DAYS", 10),
			StreakExpirationHours:     getFloatEnv("STREAK_EXPIRATION_HOURS", 28),
			EnableDailyBonus:          getBoolEnv("ENABLE_DAILY_BONUS", true),
			DailyBonusChance:          getFloatEnv("DAILY_BONUS_CHANCE", 0.1),
			EnableAutomaticMining:     getBoolEnv("ENABLE_AUTOMATIC_MINING", true),
			HourlyRewardAmount:        getFloatEnv("HOURLY_REWARD_AMOUNT", 0.1),
			DailyActivationRequired:   getBoolEnv("DAILY_ACTIVATION_REQUIRED", true),
			ActivationExpirationHours: getFloatEnv("ACTIVATION_EXPIRATION_HOURS", 24),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fallback
		}
		return boolVal
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fallback
		}
		return intVal
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fallback
		}
		return floatVal
	}
	return fallback
}
