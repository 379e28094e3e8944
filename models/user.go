package models

import (
	"time"

	"github.com/lacantine/menu-catalog/auth"
)

// User is an account of the platform.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Name      string    `gorm:"size:255"`
	Password  string    `gorm:"size:255;not null"` // bcrypt hash
	Role      auth.Role `gorm:"size:16;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) TableName() string {
	return "users"
}
