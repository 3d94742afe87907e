package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
	"gorm.io/gorm"
)

// RewardRepository handles the append-only reward ledger. It exposes no
// update or delete paths; administrative cleanup lives outside the engine.
type RewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// EventFilter narrows ledger queries.
type EventFilter struct {
	Source string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// AppendManual inserts a manual claim event and credits the user's balance in
// one transaction. The (user_id, claim_day) unique index is the duplicate
// gate: a concurrent or repeated claim on the same calendar day fails the
// insert, which is translated to mining.ErrAlreadyClaimed instead of an
// internal error.
func (r *RewardRepository) AppendManual(ctx context.Context, event *models.RewardEvent) error {
	day := mining.ClaimDay(event.Timestamp)
	event.ClaimDay = &day

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Model(&models.MinerAccount{}).
			Where("user_id = ?", event.UserID).
			Update("token_balance", gorm.Expr("token_balance + ?", event.Total())).Error
	})

	if isDuplicateKey(err) {
		return mining.ErrAlreadyClaimed
	}
	if err != nil {
		return fmt.Errorf("failed to append manual reward event: %w", err)
	}
	return nil
}

// AppendOfflineBatch inserts the hourly events of one offline reconciliation
// and credits the aggregate total, all-or-nothing. A failure mid-batch rolls
// back every generated event.
func (r *RewardRepository) AppendOfflineBatch(ctx context.Context, userID string, events []models.RewardEvent, total float64) error {
	if len(events) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&events).Error; err != nil {
			return err
		}
		return tx.Model(&models.MinerAccount{}).
			Where("user_id = ?", userID).
			Update("token_balance", gorm.Expr("token_balance + ?", total)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append offline credit batch: %w", err)
	}
	return nil
}

// LatestManualEvent retrieves the most recent manual claim for a user, or nil
// when the user has never claimed.
func (r *RewardRepository) LatestManualEvent(ctx context.Context, userID string) (*models.RewardEvent, error) {
	var event models.RewardEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND source = ?", userID, models.SourceManual).
		Order("timestamp DESC").
		First(&event).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest manual event: %w", err)
	}
	return &event, nil
}

// HasManualEventOn reports whether the user already holds a manual event for
// the given calendar day.
func (r *RewardRepository) HasManualEventOn(ctx context.Context, userID, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RewardEvent{}).
		Where("user_id = ? AND claim_day = ?", userID, day).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check claim day: %w", err)
	}
	return count > 0, nil
}

// EventsByUser retrieves a user's reward events, most recent first.
func (r *RewardRepository) EventsByUser(ctx context.Context, userID string, filter EventFilter) ([]*models.RewardEvent, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timestamp <= ?", *filter.To)
	}

	query = query.Order("timestamp DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []*models.RewardEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward events: %w", err)
	}
	return events, nil
}

// Stats aggregates dashboard counters directly from the ledger and account
// tables. There is no in-memory counter state to drift out of sync. The
// caller supplies now so the claims-today window follows the engine clock.
func (r *RewardRepository) Stats(ctx context.Context, now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalEvents int64
	if err := r.db.WithContext(ctx).Model(&models.RewardEvent{}).Count(&totalEvents).Error; err != nil {
		return nil, err
	}
	stats["total_events"] = totalEvents

	var totalDistributed float64
	if err := r.db.WithContext(ctx).Model(&models.RewardEvent{}).
		Select("COALESCE(SUM(base_amount + bonus_amount), 0)").
		Scan(&totalDistributed).Error; err != nil {
		return nil, err
	}
	stats["total_distributed"] = totalDistributed

	var claimsToday int64
	today := mining.ClaimDay(now)
	if err := r.db.WithContext(ctx).Model(&models.RewardEvent{}).
		Where("claim_day = ?", today).
		Count(&claimsToday).Error; err != nil {
		return nil, err
	}
	stats["claims_today"] = claimsToday

	var activeMiners int64
	if err := r.db.WithContext(ctx).Model(&models.MinerAccount{}).
		Where("mining_active = ?", true).
		Count(&activeMiners).Error; err != nil {
		return nil, err
	}
	stats["active_miners"] = activeMiners

	return stats, nil
}

// isDuplicateKey detects a unique-constraint violation across the supported
// drivers. gorm translates it when the dialector supports TranslateError;
// the string checks cover postgres and sqlite otherwise.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
