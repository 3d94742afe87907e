package activation

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
)

// State of a user's automatic-mining activation.
type State int

const (
	Inactive State = iota
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "inactive"
	}
}

// AccountStore is the slice of the account repository the state machine needs.
type AccountStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.MinerAccount, error)
	SetActivation(ctx context.Context, userID string, at time.Time) error
	Deactivate(ctx context.Context, userID string) error
}

// StateMachine tracks per-user activation and its expiration. Expiration is
// detected lazily on Check and persisted as a deactivation.
type StateMachine struct {
	accounts AccountStore
}

// NewStateMachine creates an activation state machine over an account store.
func NewStateMachine(accounts AccountStore) *StateMachine {
	return &StateMachine{accounts: accounts}
}

// Activate arms automatic mining for the user and returns the expiry instant.
// Re-activation is always permitted: an already-active user simply gets a
// fresh LastActivation. Activation is rejected only when the feature is
// globally disabled.
func (m *StateMachine) Activate(ctx context.Context, userID string, now time.Time, s *models.MiningSettings) (time.Time, error) {
	if !s.EnableAutomaticMining {
		return time.Time{}, mining.ErrMiningDisabled
	}

	if _, err := m.accounts.GetOrCreate(ctx, userID); err != nil {
		return time.Time{}, fmt.Errorf("failed to load miner account: %w", err)
	}
	if err := m.accounts.SetActivation(ctx, userID, now); err != nil {
		return time.Time{}, fmt.Errorf("failed to persist activation: %w", err)
	}

	return now.Add(time.Duration(s.ActivationExpirationHours * float64(time.Hour))), nil
}

// Check returns the user's activation state at now. An activation older than
// the configured expiration window is deactivated in the store and reported
// as Expired; callers must treat Expired the same as "activation required".
func (m *StateMachine) Check(ctx context.Context, userID string, now time.Time, s *models.MiningSettings) (State, error) {
	account, err := m.accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return Inactive, fmt.Errorf("failed to load miner account: %w", err)
	}

	if !account.MiningActive || account.LastActivation == nil {
		return Inactive, nil
	}

	if now.Sub(*account.LastActivation).Hours() > s.ActivationExpirationHours {
		if err := m.accounts.Deactivate(ctx, userID); err != nil {
			return Inactive, fmt.Errorf("failed to expire activation: %w", err)
		}
		return Expired, nil
	}

	return Active, nil
}
