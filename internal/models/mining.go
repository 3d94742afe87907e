package models

import (
	"time"
)

// Reward event sources
const (
	SourceManual     = "manual"
	SourceAutomatic  = "automatic"
	SourceOffline    = "offline"
	SourceTest       = "test"
	SourceTaskReward = "task_reward"
)

// Bonus classification tags
const (
	BonusNone       = "none"
	BonusStreak     = "streak"
	BonusDaily      = "daily"
	BonusMultiple   = "multiple"
	BonusTaskReward = "task_reward"
)

// RewardEvent is a single append-only ledger row. Events are immutable once
// written; the engine never updates or deletes them.
type RewardEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null;uniqueIndex:idx_user_claim_day" json:"user_id"`
	BaseAmount  float64   `gorm:"not null" json:"base_amount"`
	BonusAmount float64   `gorm:"not null;default:0" json:"bonus_amount"`
	BonusType   string    `gorm:"not null;default:'none'" json:"bonus_type"`
	StreakDay   int       `gorm:"not null;default:1" json:"streak_day"` // 1 = no streak
	Source      string    `gorm:"index;not null" json:"source"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	// ClaimDay is set only for manual events (format 2006-01-02, server-local).
	// The composite unique index is the duplicate-claim gate: a second manual
	// insert for the same user and calendar day violates it.
	ClaimDay *string `gorm:"uniqueIndex:idx_user_claim_day" json:"claim_day,omitempty"`
	// BatchID groups the hourly events generated by one offline reconciliation.
	BatchID   string    `gorm:"index" json:"batch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Total returns the full reward carried by the event.
func (e *RewardEvent) Total() float64 {
	return e.BaseAmount + e.BonusAmount
}

// MinerAccount holds the per-user activation state and balance. Accounts are
// created implicitly the first time the engine touches a user.
type MinerAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"uniqueIndex;not null" json:"user_id"`
	MiningActive   bool       `gorm:"default:false" json:"mining_active"`
	LastActivation *time.Time `json:"last_activation,omitempty"`
	MiningRate     float64    `gorm:"default:1.0" json:"mining_rate"` // personal multiplier
	TokenBalance   float64    `gorm:"default:0" json:"token_balance"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MiningSettings is the singleton row of tunable engine parameters. It is
// seeded from config defaults on startup and re-read on every operation so
// admin changes take effect without a restart.
type MiningSettings struct {
	ID                       uint    `gorm:"primaryKey" json:"id"`
	EnableStreakBonus        bool    `gorm:"default:true" json:"enable_streak_bonus"`
	StreakBonusPercentPerDay float64 `gorm:"default:0.05" json:"streak_bonus_percent_per_day"`
	MaxStreakDays            int     `gorm:"default:10" json:"max_streak_days"`
	StreakExpirationHours    float64 `gorm:"default:28" json:"streak_expiration_hours"`
	EnableDailyBonus         bool    `gorm:"default:true" json:"enable_daily_bonus"`
	DailyBonusChance         float64 `gorm:"default:0.1" json:"daily_bonus_chance"` // [0,1]
	EnableAutomaticMining    bool    `gorm:"default:true" json:"enable_automatic_mining"`
	HourlyRewardAmount       float64 `gorm:"default:0.1" json:"hourly_reward_amount"`
	DailyActivationRequired  bool    `gorm:"default:true" json:"daily_activation_required"`
	ActivationExpirationHours float64 `gorm:"default:24" json:"activation_expiration_hours"`
	UpdatedAt                time.Time `json:"updated_at"`
}
