package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository reads and writes the Settings and AdminPreferences
// singletons. Writes are a single upsert on the fixed key.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings returns the stored settings, or DefaultSettings when none
// were saved.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*Settings, error) {
	s := DefaultSettings()
	if err := getSingleton(ctx, r.db, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings creates or replaces the settings row.
func (r *SettingsRepository) SaveSettings(ctx context.Context, s *Settings) error {
	s.ID = SingletonID
	return upsertSingleton(ctx, r.db, s)
}

// GetPreferences returns the stored admin preferences, or
// DefaultAdminPreferences when none were saved.
func (r *SettingsRepository) GetPreferences(ctx context.Context) (*AdminPreferences, error) {
	p := DefaultAdminPreferences()
	if err := getSingleton(ctx, r.db, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePreferences creates or replaces the admin preferences row.
func (r *SettingsRepository) SavePreferences(ctx context.Context, p *AdminPreferences) error {
	p.ID = SingletonID
	return upsertSingleton(ctx, r.db, p)
}

// getSingleton loads the singleton row into dst, leaving dst untouched when
// the row does not exist.
func getSingleton(ctx context.Context, db *gorm.DB, dst any) error {
	err := db.WithContext(ctx).Where("id = ?", SingletonID).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func upsertSingleton(ctx context.Context, db *gorm.DB, value any) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(value).Error
}
