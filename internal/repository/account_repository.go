package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/models"
	"gorm.io/gorm"
)

// AccountRepository handles miner account state.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetOrCreate loads a miner account, creating it with defaults on first
// touch (inactive, rate 1.0, no prior activation).
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID string) (*models.MinerAccount, error) {
	var account models.MinerAccount
	err := r.db.WithContext(ctx).
		Where(models.MinerAccount{UserID: userID}).
		Attrs(models.MinerAccount{MiningRate: 1.0}).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load miner account: %w", err)
	}
	return &account, nil
}

// SetActivation marks the account active as of the given instant. An
// already-active account simply gets its activation re-armed.
func (r *AccountRepository) SetActivation(ctx context.Context, userID string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.MinerAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"mining_active":   true,
			"last_activation": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set activation: %w", err)
	}
	return nil
}

// Deactivate clears the active flag. The activation timestamp is kept for
// history.
func (r *AccountRepository) Deactivate(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&models.MinerAccount{}).
		Where("user_id = ?", userID).
		Update("mining_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	return nil
}

// DeactivateExpiredBefore clears the active flag on every account whose last
// activation predates the cutoff. Used by the periodic sweep; the lazy check
// on the claim path remains authoritative.
func (r *AccountRepository) DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.MinerAccount{}).
		Where("mining_active = ? AND last_activation < ?", true, cutoff).
		Update("mining_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired activations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SetMiningRate updates a user's personal reward multiplier (admin path).
func (r *AccountRepository) SetMiningRate(ctx context.Context, userID string, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("mining rate must be positive, got %v", rate)
	}
	err := r.db.WithContext(ctx).Model(&models.MinerAccount{}).
		Where("user_id = ?", userID).
		Update("mining_rate", rate).Error
	if err != nil {
		return fmt.Errorf("failed to set mining rate: %w", err)
	}
	return nil
}
