package models

import "time"

// Rating bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one user's score of a product. A user rates a product at most
// once.
type Rating struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_rating_product_user"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_rating_product_user"`
	Score     int    `gorm:"not null"`
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Rating) TableName() string {
	return "ratings"
}

// Favorite marks a product as liked by a user.
type Favorite struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_favorite_product_user"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorite_product_user;index"`
	CreatedAt time.Time
}

func (f *Favorite) TableName() string {
	return "favorites"
}
