package models

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/validation"
)

// FieldEmail is the input field of User.Email.
const FieldEmail = "email"

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// CreateUser inserts u. Emails are stored lower-cased and must be unique.
func (r *UsersRepository) CreateUser(ctx context.Context, u *User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&User{}).Where("email = ?", u.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return validation.Violations{FieldEmail: validation.CodeTaken}.Err()
		}
		return tx.Create(u).Error
	})
}

func (r *UsersRepository) GetByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetRole changes the role of a user. The last administrator cannot be
// demoted.
func (r *UsersRepository) SetRole(ctx context.Context, id uint, role auth.Role) (*User, error) {
	if !role.Valid() {
		return nil, validation.Violations{"role": validation.CodeNotAllowed}.Err()
	}
	var u User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.Role == auth.RoleAdmin && role != auth.RoleAdmin {
			var admins int64
			if err := tx.Model(&User{}).Where("role = ?", auth.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return &ConflictError{Resource: "user", Reason: "last administrator"}
			}
		}
		u.Role = role
		return tx.Model(&u).Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ResolveRole returns the current role of a user for session checks.
func (r *UsersRepository) ResolveRole(ctx context.Context, id uint) (auth.Role, bool) {
	var u User
	if err := r.db.WithContext(ctx).Select("id", "role").First(&u, id).Error; err != nil {
		return "", false
	}
	return u.Role, true
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
