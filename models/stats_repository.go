package models

import (
	"context"

	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/auth"
)

// Summary is the back-office overview of the catalog.
type Summary struct {
	Products          int64
	AvailableProducts int64
	Featured          int64
	Popular           int64
	Trending          int64
	Categories        int64
	Ingredients       int64
	Extras            int64
	Ratings           int64
	Favorites         int64
	UsersByRole       map[auth.Role]int64
	TopRated          []Product
}

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Summary computes the overview. topN bounds the TopRated list.
func (r *StatsRepository) Summary(ctx context.Context, topN int) (*Summary, error) {
	db := r.db.WithContext(ctx)
	s := &Summary{UsersByRole: map[auth.Role]int64{}}

	counts := []struct {
		dst   *int64
		model any
		where string
	}{
		{&s.Products, &Product{}, ""},
		{&s.AvailableProducts, &Product{}, "is_available = true"},
		{&s.Featured, &Product{}, "is_featured = true"},
		{&s.Popular, &Product{}, "is_popular = true"},
		{&s.Trending, &Product{}, "is_trending = true"},
		{&s.Categories, &Category{}, ""},
		{&s.Ingredients, &Ingredient{}, ""},
		{&s.Extras, &Extra{}, ""},
		{&s.Ratings, &Rating{}, ""},
		{&s.Favorites, &Favorite{}, ""},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var roles []struct {
		Role  auth.Role
		Total int64
	}
	if err := db.Model(&User{}).Select("role, COUNT(*) AS total").Group("role").Scan(&roles).Error; err != nil {
		return nil, err
	}
	for _, rc := range roles {
		s.UsersByRole[rc.Role] = rc.Total
	}

	if topN > 0 {
		if err := db.Where("rating IS NOT NULL").
			Order("rating DESC, rating_count DESC, id ASC").
			Limit(topN).
			Find(&s.TopRated).Error; err != nil {
			return nil, err
		}
	}
	return s, nil
}
