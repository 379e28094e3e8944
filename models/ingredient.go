package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lacantine/menu-catalog/i18n"
)

// Ingredient is a component of a product, with its dietary flags.
type Ingredient struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"uniqueIndex;size:255;not null"`
	NameI18n     i18n.Text `gorm:"type:text"`
	Description  string    `gorm:"type:text"`
	IsVegetarian bool      `gorm:"not null"`
	IsVegan      bool      `gorm:"not null"`
	IsGlutenFree bool      `gorm:"not null"`
	IsAllergen   bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i *Ingredient) TableName() string {
	return "ingredients"
}

// LocalizedName renders the ingredient name for locale.
func (i *Ingredient) LocalizedName(locale string) string {
	return i18n.Resolve(i.NameI18n.Or(i.Name), locale)
}

// Extra types.
const (
	ExtraSauce   = "sauce"
	ExtraTopping = "topping"
	ExtraSide    = "side"
	ExtraDrink   = "drink"
)

// ExtraTypes lists the accepted Extra.Type values.
var ExtraTypes = []string{ExtraSauce, ExtraTopping, ExtraSide, ExtraDrink}

// Extra is a paid option that can be added to a product.
type Extra struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"uniqueIndex;size:255;not null"`
	NameI18n  i18n.Text       `gorm:"type:text"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Type      string          `gorm:"size:32;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Extra) TableName() string {
	return "extras"
}

// LocalizedName renders the extra name for locale.
func (e *Extra) LocalizedName(locale string) string {
	return i18n.Resolve(e.NameI18n.Or(e.Name), locale)
}
