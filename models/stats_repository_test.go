package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacantine/menu-catalog/auth"
)

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedCategory(t, db, "Burgers", nil)
	a := seedProduct(t, db, "A", "5", 1, func(p *Product) { p.IsFeatured = true })
	b := seedProduct(t, db, "B", "5", 2, func(p *Product) { p.IsAvailable = false })
	seedProduct(t, db, "C", "5", 3)
	u := seedUser(t, db, "u@example.com")
	require.NoError(t, db.Create(&User{Email: "admin@example.com", Password: "x", Role: auth.RoleAdmin}).Error)

	reviews := NewReviewsRepository(db)
	_, err := reviews.RateProduct(ctx, a.ID, u.ID, 3, "")
	require.NoError(t, err)
	_, err = reviews.RateProduct(ctx, b.ID, u.ID, 5, "")
	require.NoError(t, err)
	_, err = reviews.ToggleFavorite(ctx, a.ID, u.ID)
	require.NoError(t, err)

	s, err := NewStatsRepository(db).Summary(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(3), s.Products)
	assert.Equal(t, int64(2), s.AvailableProducts)
	assert.Equal(t, int64(1), s.Featured)
	assert.Equal(t, int64(1), s.Categories)
	assert.Equal(t, int64(2), s.Ratings)
	assert.Equal(t, int64(1), s.Favorites)
	assert.Equal(t, map[auth.Role]int64{auth.RoleUser: 1, auth.RoleAdmin: 1}, s.UsersByRole)
	assert.Equal(t, []string{"B", "A"}, productNames(s.TopRated))
}
