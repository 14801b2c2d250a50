// Package setting reads and writes named values in the settings table.
package setting

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TigerArchive/TigerArchive/internal/db/models"
	"github.com/TigerArchive/TigerArchive/internal/db/store"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const nameQueryPattern = "name = ?"

// ErrSettingNameEmpty is returned for an empty setting name.
var ErrSettingNameEmpty = rbac.NewValidationError("name", "setting name cannot be empty")

// Get retrieves the setting name, rbac.ErrNotFound if it was never set.
func Get(ctx context.Context, s *store.Store, name string) (*models.Setting, error) {
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	if err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Where(nameQueryPattern, name).First(&setting).Error
	}); err != nil {
		return nil, err
	}

	return &setting, nil
}

// Set creates or replaces the setting name.
func Set(ctx context.Context, s *store.Store, name string, value []byte) (*models.Setting, error) {
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	setting := models.Setting{Name: name, Value: value}

	err := s.Do(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&setting).Error
	})
	if err != nil {
		return nil, err
	}

	return &setting, nil
}

// Delete removes the setting name, rbac.ErrNotFound if it does not exist.
func Delete(ctx context.Context, s *store.Store, name string) error {
	if name == "" {
		return ErrSettingNameEmpty
	}

	return s.Do(ctx, func(db *gorm.DB) error {
		result := db.Where(nameQueryPattern, name).Delete(&models.Setting{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return rbac.ErrNotFound
		}

		return nil
	})
}

// GetJSON decodes the setting name into v. found is false when it was never set.
func GetJSON(ctx context.Context, s *store.Store, name string, v any) (found bool, err error) {
	setting, err := Get(ctx, s, name)
	if errors.Is(err, rbac.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if err = json.Unmarshal(setting.Value, v); err != nil {
		return true, fmt.Errorf("decode setting %s: %w", name, err)
	}

	return true, nil
}

// SetJSON stores v encoded as JSON under name.
func SetJSON(ctx context.Context, s *store.Store, name string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", name, err)
	}

	_, err = Set(ctx, s, name, value)

	return err
}
