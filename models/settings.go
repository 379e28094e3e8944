package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/lacantine/menu-catalog/i18n"
)

// SingletonID is the primary key of singleton rows.
const SingletonID uint = 1

// Settings holds the site-wide configuration. There is a single row.
type Settings struct {
	ID               uint      `gorm:"primaryKey"`
	SiteName         i18n.Text `gorm:"type:text"`
	DefaultLocale    string    `gorm:"size:8;not null"`
	SupportedLocales datatypes.JSONSlice[string]
	ContactEmail     string `gorm:"size:255"`
	Currency         string `gorm:"size:3;not null"`
	Metadata         datatypes.JSONMap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s *Settings) TableName() string {
	return "settings"
}

// DefaultSettings is served until an administrator saves settings.
func DefaultSettings() Settings {
	return Settings{
		ID:               SingletonID,
		SiteName:         i18n.Localized(i18n.Entry{Locale: "fr", Value: "La Cantine"}, i18n.Entry{Locale: "en", Value: "La Cantine"}),
		DefaultLocale:    i18n.DefaultLang,
		SupportedLocales: datatypes.JSONSlice[string]{"fr", "en"},
		Currency:         "EUR",
		Metadata:         datatypes.JSONMap{},
	}
}

// Themes accepted by AdminPreferences.
var Themes = []string{"light", "dark", "system"}

// AdminPreferences holds back-office defaults. There is a single row.
type AdminPreferences struct {
	ID              uint   `gorm:"primaryKey"`
	DefaultPageSize int    `gorm:"not null"`
	DefaultSort     string `gorm:"size:32;not null"`
	Locale          string `gorm:"size:8;not null"`
	Theme           string `gorm:"size:16;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *AdminPreferences) TableName() string {
	return "admin_preferences"
}

// DefaultAdminPreferences is served until an administrator saves
// preferences.
func DefaultAdminPreferences() AdminPreferences {
	return AdminPreferences{
		ID:              SingletonID,
		DefaultPageSize: 10,
		DefaultSort:     "created_at_desc",
		Locale:          i18n.DefaultLang,
		Theme:           "system",
	}
}
