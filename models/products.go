package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/i18n"
)

// Product represents a dish or drink of the menu.
// Name and Description hold the default-locale text; NameI18n and
// DescriptionI18n carry optional translations.
type Product struct {
	ID              string          `gorm:"primaryKey;size:36"`
	Name            string          `gorm:"size:255;not null"`
	NameI18n        i18n.Text       `gorm:"type:text"`
	Description     string          `gorm:"type:text"`
	DescriptionI18n i18n.Text       `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ImageURL        string          `gorm:"size:512"`
	IsAvailable     bool            `gorm:"not null;index"`
	CategoryID      *uint           `gorm:"index"`
	Category        *Category       `gorm:"foreignKey:CategoryID"`
	Rating          *float64
	RatingCount     int          `gorm:"not null"`
	FavoriteCount   int          `gorm:"not null"`
	IsFeatured      bool         `gorm:"not null;index"`
	IsPopular       bool         `gorm:"not null;index"`
	IsTrending      bool         `gorm:"not null;index"`
	Ingredients     []Ingredient `gorm:"many2many:product_ingredients"`
	Extras          []Extra      `gorm:"many2many:product_extras"`
	CreatedAt       time.Time    `gorm:"index"`
	UpdatedAt       time.Time
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LocalizedName renders the product name for locale.
func (p *Product) LocalizedName(locale string) string {
	return i18n.Resolve(p.NameI18n.Or(p.Name), locale)
}

// LocalizedDescription renders the product description for locale.
func (p *Product) LocalizedDescription(locale string) string {
	return i18n.Resolve(p.DescriptionI18n.Or(p.Description), locale)
}

// Item snapshots p for the catalog query engine, with texts rendered for
// locale. seq is the product's position in the snapshot.
func (p *Product) Item(locale string, seq int) catalog.Item {
	it := catalog.Item{
		ID:          p.ID,
		Seq:         seq,
		Name:        p.LocalizedName(locale),
		Description: p.LocalizedDescription(locale),
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
		Rating:      p.Rating,
		Popularity:  p.FavoriteCount,
		IsFeatured:  p.IsFeatured,
		IsPopular:   p.IsPopular,
		IsTrending:  p.IsTrending,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Ref:         p,
	}
	if p.CategoryID != nil {
		it.CategoryID = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	return it
}

// Items snapshots products in order.
func Items(products []Product, locale string) []catalog.Item {
	items := make([]catalog.Item, len(products))
	for i := range products {
		items[i] = products[i].Item(locale, i)
	}
	return items
}

// ProductFlags is a partial update of the collection and availability flags
// of several products. A nil field is left untouched.
type ProductFlags struct {
	IsAvailable *bool
	IsFeatured  *bool
	IsPopular   *bool
	IsTrending  *bool
}

func (f ProductFlags) columns() map[string]any {
	cols := make(map[string]any)
	if f.IsAvailable != nil {
		cols["is_available"] = *f.IsAvailable
	}
	if f.IsFeatured != nil {
		cols["is_featured"] = *f.IsFeatured
	}
	if f.IsPopular != nil {
		cols["is_popular"] = *f.IsPopular
	}
	if f.IsTrending != nil {
		cols["is_trending"] = *f.IsTrending
	}
	return cols
}
