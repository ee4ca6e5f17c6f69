package repositories

import (
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository stores admin-tunable runtime settings.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored value, or empty string when the key is unset.
func (r *SettingsRepository) Get(key string) (string, error) {
	var setting models.Setting
	result := r.db.Where("key = ?", key).First(&setting)

	if result.Error == gorm.ErrRecordNotFound {
		return "", nil
	}
	if result.Error != nil {
		return "", errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get setting")
	}
	return setting.Value, nil
}

// Set upserts a setting.
func (r *SettingsRepository) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting)

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to set setting")
	}
	return nil
}
