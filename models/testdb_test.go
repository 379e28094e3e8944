package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(All()...))
	return db
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, minutes int, mutate ...func(*Product)) *Product {
	t.Helper()
	p := &Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
		CreatedAt:   baseTime.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt:   baseTime.Add(time.Duration(minutes) * time.Minute),
	}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedCategory(t *testing.T, db *gorm.DB, name string, parentID *uint) *Category {
	t.Helper()
	c := &Category{Name: name, Slug: Slugify(name), IsActive: true, ParentID: parentID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedUser(t *testing.T, db *gorm.DB, email string) *User {
	t.Helper()
	u := &User{Email: email, Password: "hash", Role: "USER"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func productNames(products []Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}
