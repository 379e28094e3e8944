package models

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lacantine/menu-catalog/validation"
)

// FieldScore is the input field of Rating.Score.
const FieldScore = "score"

// ReviewsRepository stores ratings and favorites and keeps the product
// aggregates (Rating, RatingCount, FavoriteCount) in step with them.
type ReviewsRepository struct {
	db *gorm.DB
}

func NewReviewsRepository(db *gorm.DB) *ReviewsRepository {
	return &ReviewsRepository{db: db}
}

// RateProduct records the user's score for a product, replacing any
// previous one, and recomputes the product's mean rating.
func (r *ReviewsRepository) RateProduct(ctx context.Context, productID string, userID uint, score int, comment string) (*Rating, error) {
	v := make(validation.Violations)
	validation.RangeInt(FieldScore, score, MinScore, MaxScore, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	rating := &Rating{ProductID: productID, UserID: userID, Score: score, Comment: comment}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, productID); err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
		}).Create(rating).Error; err != nil {
			return err
		}
		var stored Rating
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).First(&stored).Error; err != nil {
			return err
		}
		*rating = stored
		return recomputeRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// DeleteRating removes the user's rating of a product.
func (r *ReviewsRepository) DeleteRating(ctx context.Context, productID string, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("product_id = ? AND user_id = ?", productID, userID).Delete(&Rating{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRatingNotFound
		}
		return recomputeRating(tx, productID)
	})
}

// GetRatings lists the ratings of a product, newest first.
func (r *ReviewsRepository) GetRatings(ctx context.Context, productID string) ([]Rating, error) {
	var ratings []Rating
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("updated_at DESC, id DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// ToggleFavorite adds the product to the user's favorites, or removes it
// when already there. It reports whether the product is now a favorite.
func (r *ReviewsRepository) ToggleFavorite(ctx context.Context, productID string, userID uint) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, productID); err != nil {
			return err
		}

		res := tx.Where("product_id = ? AND user_id = ?", productID, userID).Delete(&Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&Favorite{ProductID: productID, UserID: userID}).Error; err != nil {
				return err
			}
			favorited = true
		}

		var count int64
		if err := tx.Model(&Favorite{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&Product{ID: productID}).UpdateColumn("favorite_count", count).Error
	})
	return favorited, err
}

// GetFavorites returns the user's favorite products, most recent first.
func (r *ReviewsRepository) GetFavorites(ctx context.Context, userID uint) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func productExists(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// recomputeRating sets the product rating to the mean of its ratings, or
// NULL when it has none.
func recomputeRating(tx *gorm.DB, productID string) error {
	var agg struct {
		Mean  sql.NullFloat64
		Total int64
	}
	if err := tx.Model(&Rating{}).
		Select("AVG(score) AS mean, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}

	var rating *float64
	if agg.Total > 0 && agg.Mean.Valid {
		rating = &agg.Mean.Float64
	}
	return tx.Model(&Product{ID: productID}).UpdateColumns(map[string]any{
		"rating":       rating,
		"rating_count": agg.Total,
	}).Error
}

// IsFavorite reports whether the user has the product among favorites.
func (r *ReviewsRepository) IsFavorite(ctx context.Context, productID string, userID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
