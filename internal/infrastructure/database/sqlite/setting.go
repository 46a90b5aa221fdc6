package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"breakreminder/internal/domain/entity"
	"breakreminder/internal/domain/repository"
)

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *gorm.DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

// Get retrieves the value stored under key.
func (r *settingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var setting entity.Setting
	err := r.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to find setting %s: %w", key, err)
	}
	return setting.Value, true, nil
}

// Set inserts or updates the value stored under key.
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	setting := entity.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
