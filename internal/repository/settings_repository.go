package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/token-mine/mining-service/internal/models"
	"gorm.io/gorm"
)

// settingsRowID pins the settings table to a single row.
const settingsRowID = 1

// SettingsRepository reads and updates the singleton mining settings row.
// The engine re-reads it per operation so admin changes apply immediately.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the current mining settings.
func (r *SettingsRepository) Get(ctx context.Context) (*models.MiningSettings, error) {
	var settings models.MiningSettings
	err := r.db.WithContext(ctx).First(&settings, settingsRowID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mining settings: %w", err)
	}
	return &settings, nil
}

// Seed writes the default settings row if none exists yet. Existing settings
// are left untouched.
func (r *SettingsRepository) Seed(ctx context.Context, defaults *models.MiningSettings) error {
	var existing models.MiningSettings
	err := r.db.WithContext(ctx).First(&existing, settingsRowID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check mining settings: %w", err)
	}

	defaults.ID = settingsRowID
	// Select("*") forces every field into the INSERT. A plain Create skips
	// zero-valued fields carrying a default tag, so a disabled bool flag
	// would silently come back true from the column default.
	if err := r.db.WithContext(ctx).Select("*").Create(defaults).Error; err != nil {
		return fmt.Errorf("failed to seed mining settings: %w", err)
	}
	return nil
}

// Update replaces the tunable parameters (admin path).
func (r *SettingsRepository) Update(ctx context.Context, settings *models.MiningSettings) error {
	settings.ID = settingsRowID
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update mining settings: %w", err)
	}
	return nil
}
