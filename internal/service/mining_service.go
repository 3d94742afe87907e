package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/token-mine/mining-service/internal/activation"
	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
	"github.com/yourusername/token-mine/mining-service/internal/repository"
	"github.com/yourusername/token-mine/mining-service/pkg/logger"
	"go.uber.org/zap"
)

// MiningService orchestrates the reward engine: manual claims, activation,
// offline reconciliation and ledger queries.
type MiningService struct {
	rewards  *repository.RewardRepository
	accounts *repository.AccountRepository
	settings *repository.SettingsRepository
	state    *activation.StateMachine
	bonus    *mining.BonusEngine
	clock    func() time.Time
}

// NewMiningService creates a new mining service. A nil bonus engine gets the
// default random source.
func NewMiningService(
	rewards *repository.RewardRepository,
	accounts *repository.AccountRepository,
	settings *repository.SettingsRepository,
	bonus *mining.BonusEngine,
) *MiningService {
	if bonus == nil {
		bonus = mining.NewBonusEngine(nil)
	}
	return &MiningService{
		rewards:  rewards,
		accounts: accounts,
		settings: settings,
		state:    activation.NewStateMachine(accounts),
		bonus:    bonus,
		clock:    time.Now,
	}
}

// ClaimResult reports a successful manual claim.
type ClaimResult struct {
	BaseAmount     float64   `json:"base_amount"`
	BonusAmount    float64   `json:"bonus_amount"`
	TotalAmount    float64   `json:"total_amount"`
	BonusType      string    `json:"bonus_type"`
	StreakDay      int       `json:"streak_day"`
	NextEligibleAt time.Time `json:"next_eligible_at"`
}

// ActivationResult reports a successful activation.
type ActivationResult struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// OfflineCreditResult reports one offline reconciliation.
type OfflineCreditResult struct {
	TotalReward float64              `json:"total_reward"`
	BaseReward  float64              `json:"base_reward"`
	StreakBonus float64              `json:"streak_bonus"`
	Hours       int                  `json:"hours"`
	Entries     []models.RewardEvent `json:"entries"`
}

// StatusResult is the user-facing mining status snapshot.
type StatusResult struct {
	ActivationState string    `json:"activation_state"`
	MiningRate      float64   `json:"mining_rate"`
	TokenBalance    float64   `json:"token_balance"`
	CurrentStreak   int       `json:"current_streak"`
	ClaimedToday    bool      `json:"claimed_today"`
	NextEligibleAt  time.Time `json:"next_eligible_at"`
}

// ClaimDaily performs a manual reward claim for the user. The one-per-day
// guarantee is enforced by the ledger's unique claim-day index, so two
// concurrent claims race to the same insert and exactly one wins.
func (s *MiningService) ClaimDaily(ctx context.Context, userID string) (*ClaimResult, error) {
	now := s.clock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if settings.EnableAutomaticMining && settings.DailyActivationRequired {
		state, err := s.state.Check(ctx, userID, now, settings)
		if err != nil {
			return nil, err
		}
		if state != activation.Active {
			return nil, mining.ErrActivationRequired
		}
	}

	last, err := s.rewards.LatestManualEvent(ctx, userID)
	if err != nil {
		return nil, err
	}
	streakDay := mining.NextStreakDay(last, now)

	baseAmount := account.MiningRate
	bonusAmount, bonusType := s.bonus.Compute(baseAmount, streakDay, settings)

	event := &models.RewardEvent{
		UserID:      userID,
		BaseAmount:  baseAmount,
		BonusAmount: bonusAmount,
		BonusType:   bonusType,
		StreakDay:   streakDay,
		Source:      models.SourceManual,
		Timestamp:   now,
	}
	if err := s.rewards.AppendManual(ctx, event); err != nil {
		return nil, err
	}

	logger.Info("Manual reward claimed",
		zap.String("userID", userID),
		zap.Float64("base", baseAmount),
		zap.Float64("bonus", bonusAmount),
		zap.String("bonusType", bonusType),
		zap.Int("streakDay", streakDay),
	)

	return &ClaimResult{
		BaseAmount:     baseAmount,
		BonusAmount:    bonusAmount,
		TotalAmount:    baseAmount + bonusAmount,
		BonusType:      bonusType,
		StreakDay:      streakDay,
		NextEligibleAt: mining.StartOfNextDay(now),
	}, nil
}

// Activate arms automatic mining for the user and returns the expiry. No
// ledger write happens here; re-activation always succeeds and supersedes
// the previous activation.
func (s *MiningService) Activate(ctx context.Context, userID string) (*ActivationResult, error) {
	now := s.clock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	expiry, err := s.state.Activate(ctx, userID, now, settings)
	if err != nil {
		return nil, err
	}

	logger.Info("Mining activated",
		zap.String("userID", userID),
		zap.Time("expiresAt", expiry),
	)

	return &ActivationResult{ExpiresAt: expiry}, nil
}

// CreditOffline back-fills rewards for hours the user spent offline,
// quantized to whole hours and capped. The hourly events are written in one
// transaction. There is no daily duplicate gate here: the credit covers time
// already elapsed, and callers must pass elapsed-since-last-credit rather
// than a fixed window, since a blind retry would double-credit.
func (s *MiningService) CreditOffline(ctx context.Context, userID string, hoursElapsed float64) (*OfflineCreditResult, error) {
	if err := mining.ValidateOfflineHours(hoursElapsed); err != nil {
		return nil, err
	}

	now := s.clock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	state, err := s.state.Check(ctx, userID, now, settings)
	if err != nil {
		return nil, err
	}
	if state != activation.Active {
		return nil, mining.ErrMiningNotActive
	}

	last, err := s.rewards.LatestManualEvent(ctx, userID)
	if err != nil {
		return nil, err
	}
	streakDay := mining.NextStreakDay(last, now)

	events, summary, err := mining.BuildOfflineCredit(
		userID, hoursElapsed, account.MiningRate, streakDay, settings, uuid.NewString(), now)
	if err != nil {
		return nil, err
	}

	if err := s.rewards.AppendOfflineBatch(ctx, userID, events, summary.TotalReward); err != nil {
		return nil, err
	}

	logger.Info("Offline rewards credited",
		zap.String("userID", userID),
		zap.Int("hours", summary.Hours),
		zap.Float64("base", summary.BaseReward),
		zap.Float64("streakBonus", summary.StreakBonus),
	)

	return &OfflineCreditResult{
		TotalReward: summary.TotalReward,
		BaseReward:  summary.BaseReward,
		StreakBonus: summary.StreakBonus,
		Hours:       summary.Hours,
		Entries:     events,
	}, nil
}

// History retrieves the user's reward events, most recent first.
func (s *MiningService) History(ctx context.Context, userID string, limit int) ([]*models.RewardEvent, error) {
	return s.rewards.EventsByUser(ctx, userID, repository.EventFilter{Limit: limit})
}

// Status returns the user's activation state, streak and claim eligibility.
func (s *MiningService) Status(ctx context.Context, userID string) (*StatusResult, error) {
	now := s.clock()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	state, err := s.state.Check(ctx, userID, now, settings)
	if err != nil {
		return nil, err
	}

	claimedToday, err := s.rewards.HasManualEventOn(ctx, userID, mining.ClaimDay(now))
	if err != nil {
		return nil, err
	}

	last, err := s.rewards.LatestManualEvent(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The streak stands while the continuation window is open; after that it
	// is already broken even though no event records the break.
	currentStreak := 0
	if last != nil && now.Sub(last.Timestamp).Hours() <= mining.StreakWindowMaxHours {
		currentStreak = last.StreakDay
	}

	nextEligible := now
	if claimedToday {
		nextEligible = mining.StartOfNextDay(now)
	}

	return &StatusResult{
		ActivationState: state.String(),
		MiningRate:      account.MiningRate,
		TokenBalance:    account.TokenBalance,
		CurrentStreak:   currentStreak,
		ClaimedToday:    claimedToday,
		NextEligibleAt:  nextEligible,
	}, nil
}

// Stats aggregates dashboard counters over the ledger.
func (s *MiningService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.rewards.Stats(ctx, s.clock())
}

// UpdateSettings replaces the tunable parameters (admin path).
func (s *MiningService) UpdateSettings(ctx context.Context, settings *models.MiningSettings) error {
	if settings.DailyBonusChance < 0 || settings.DailyBonusChance > 1 {
		return fmt.Errorf("daily bonus chance must be in [0,1], got %v", settings.DailyBonusChance)
	}
	if settings.HourlyRewardAmount <= 0 {
		return fmt.Errorf("hourly reward amount must be positive, got %v", settings.HourlyRewardAmount)
	}
	if settings.ActivationExpirationHours <= 0 {
		return fmt.Errorf("activation expiration must be positive, got %v", settings.ActivationExpirationHours)
	}
	return s.settings.Update(ctx, settings)
}

// ExpireStaleActivations deactivates every account whose activation has
// lapsed. The lazy check on the claim path is authoritative; this sweep only
// keeps the active-miner counters honest between claims.
func (s *MiningService) ExpireStaleActivations(ctx context.Context) (int64, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.clock().Add(-time.Duration(settings.ActivationExpirationHours * float64(time.Hour)))
	swept, err := s.accounts.DeactivateExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		logger.Info("Expired stale activations", zap.Int64("count", swept))
	}
	return swept, nil
}

// HealthCheck verifies the storage layer is reachable.
func (s *MiningService) HealthCheck(ctx context.Context) error {
	if _, err := s.settings.Get(ctx); err != nil {
		return errors.New("storage unavailable")
	}
	return nil
}
