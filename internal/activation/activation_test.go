package activation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
)

// In-memory account store for state machine tests.
type fakeStore struct {
	accounts map[string]*models.MinerAccount
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*models.MinerAccount)}
}

func (f *fakeStore) GetOrCreate(_ context.Context, userID string) (*models.MinerAccount, error) {
	if a, ok := f.accounts[userID]; ok {
		return a, nil
	}
	a := &models.MinerAccount{UserID: userID, MiningRate: 1.0}
	f.accounts[userID] = a
	return a, nil
}

func (f *fakeStore) SetActivation(_ context.Context, userID string, at time.Time) error {
	a := f.accounts[userID]
	a.MiningActive = true
	ts := at
	a.LastActivation = &ts
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, userID string) error {
	f.accounts[userID].MiningActive = false
	return nil
}

func testSettings() *models.MiningSettings {
	return &models.MiningSettings{
		EnableAutomaticMining:     true,
		ActivationExpirationHours: 24,
	}
}

func TestActivate(t *testing.T) {
	store := newFakeStore()
	sm := NewStateMachine(store)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	expiry, err := sm.Activate(ctx, "u1", now, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expiry.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("expiry = %v, want %v", expiry, now.Add(24*time.Hour))
	}

	account := store.accounts["u1"]
	if !account.MiningActive {
		t.Error("account should be active after activation")
	}
	if account.LastActivation == nil || !account.LastActivation.Equal(now) {
		t.Errorf("lastActivation = %v, want %v", account.LastActivation, now)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	sm := NewStateMachine(store)
	ctx := context.Background()
	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	if _, err := sm.Activate(ctx, "u1", first, testSettings()); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	if _, err := sm.Activate(ctx, "u1", second, testSettings()); err != nil {
		t.Fatalf("re-activation failed: %v", err)
	}

	// The later activation supersedes the earlier one.
	got := store.accounts["u1"].LastActivation
	if got == nil || !got.Equal(second) {
		t.Errorf("lastActivation = %v, want %v", got, second)
	}
}

func TestActivateRejectedWhenDisabled(t *testing.T) {
	sm := NewStateMachine(newFakeStore())
	settings := testSettings()
	settings.EnableAutomaticMining = false

	_, err := sm.Activate(context.Background(), "u1", time.Now(), settings)
	if !errors.Is(err, mining.ErrMiningDisabled) {
		t.Errorf("expected ErrMiningDisabled, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("Inactive by default", func(t *testing.T) {
		sm := NewStateMachine(newFakeStore())
		state, err := sm.Check(ctx, "u1", now, testSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != Inactive {
			t.Errorf("state = %v, want Inactive", state)
		}
	})

	t.Run("Active within the expiration window", func(t *testing.T) {
		store := newFakeStore()
		sm := NewStateMachine(store)
		if _, err := sm.Activate(ctx, "u1", now.Add(-23*time.Hour), testSettings()); err != nil {
			t.Fatalf("activation failed: %v", err)
		}

		state, err := sm.Check(ctx, "u1", now, testSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != Active {
			t.Errorf("state = %v, want Active", state)
		}
	})

	t.Run("Expired activation is deactivated lazily", func(t *testing.T) {
		store := newFakeStore()
		sm := NewStateMachine(store)
		if _, err := sm.Activate(ctx, "u1", now.Add(-25*time.Hour), testSettings()); err != nil {
			t.Fatalf("activation failed: %v", err)
		}

		state, err := sm.Check(ctx, "u1", now, testSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != Expired {
			t.Errorf("state = %v, want Expired", state)
		}
		if store.accounts["u1"].MiningActive {
			t.Error("expired account should be deactivated in the store")
		}

		// A later check sees plain Inactive.
		state, err = sm.Check(ctx, "u1", now, testSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != Inactive {
			t.Errorf("state after expiry = %v, want Inactive", state)
		}
	})
}
