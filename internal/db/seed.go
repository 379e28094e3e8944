package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
)

// SeedOptions configures Seed. The administrator is created only when
// AdminEmail and AdminPassword are set.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	SampleMenu    bool
}

// Seed stores the settings singletons, the bootstrap administrator and,
// on an empty catalog, a sample menu. It is safe to run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	settings := models.NewSettingsRepository(db)
	s, err := settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	if err := settings.SaveSettings(ctx, s); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	p, err := settings.GetPreferences(ctx)
	if err != nil {
		return err
	}
	if err := settings.SavePreferences(ctx, p); err != nil {
		return fmt.Errorf("seed preferences: %w", err)
	}

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(ctx, db, opts.AdminEmail, opts.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	if opts.SampleMenu {
		if err := seedMenu(ctx, db); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	users := models.NewUsersRepository(db)
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return users.CreateUser(ctx, &models.User{Email: email, Name: "Administrator", Password: hash, Role: auth.RoleAdmin})
}

func text(fr, en string) i18n.Text {
	return i18n.Localized(i18n.Entry{Locale: "fr", Value: fr}, i18n.Entry{Locale: "en", Value: en})
}

func seedMenu(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	categories := models.NewCategoriesRepository(db)
	sections := []*models.Category{
		{Name: "Entrées", NameI18n: text("Entrées", "Starters"), IsActive: true, Position: 1},
		{Name: "Plats", NameI18n: text("Plats", "Mains"), IsActive: true, Position: 2},
		{Name: "Desserts", NameI18n: text("Desserts", "Desserts"), IsActive: true, Position: 3},
		{Name: "Boissons", NameI18n: text("Boissons", "Drinks"), IsActive: true, Position: 4},
	}
	for _, c := range sections {
		if err := categories.CreateCategory(ctx, c); err != nil {
			return err
		}
	}

	ingredients := models.NewIngredientsRepository(db)
	tomato := &models.Ingredient{Name: "Tomate", NameI18n: text("Tomate", "Tomato"), IsVegetarian: true, IsVegan: true, IsGlutenFree: true}
	cheese := &models.Ingredient{Name: "Comté", NameI18n: text("Comté", "Comté cheese"), IsVegetarian: true, IsGlutenFree: true, IsAllergen: true}
	bread := &models.Ingredient{Name: "Pain", NameI18n: text("Pain", "Bread"), IsVegetarian: true, IsVegan: true, IsAllergen: true}
	for _, i := range []*models.Ingredient{tomato, cheese, bread} {
		if err := ingredients.CreateIngredient(ctx, i); err != nil {
			return err
		}
	}

	extras := models.NewExtrasRepository(db)
	aioli := &models.Extra{Name: "Aïoli", NameI18n: text("Aïoli", "Garlic mayonnaise"), Price: decimal.RequireFromString("1.50"), Type: models.ExtraSauce}
	fries := &models.Extra{Name: "Frites", NameI18n: text("Frites", "Fries"), Price: decimal.RequireFromString("3.00"), Type: models.ExtraSide}
	for _, e := range []*models.Extra{aioli, fries} {
		if err := extras.CreateExtra(ctx, e); err != nil {
			return err
		}
	}

	products := models.NewProductsRepository(db)
	menu := []struct {
		product     *models.Product
		ingredients []uint
		extras      []uint
	}{
		{
			product: &models.Product{
				Name: "Salade de tomates", NameI18n: text("Salade de tomates", "Tomato salad"),
				Price: decimal.RequireFromString("7.50"), IsAvailable: true, CategoryID: &sections[0].ID,
			},
			ingredients: []uint{tomato.ID},
		},
		{
			product: &models.Product{
				Name: "Croque-monsieur", NameI18n: text("Croque-monsieur", "Toasted ham and cheese"),
				Price: decimal.RequireFromString("11.00"), IsAvailable: true, IsFeatured: true, CategoryID: &sections[1].ID,
			},
			ingredients: []uint{cheese.ID, bread.ID},
			extras:      []uint{fries.ID, aioli.ID},
		},
		{
			product: &models.Product{
				Name: "Tarte Tatin", NameI18n: text("Tarte Tatin", "Upside-down apple tart"),
				Price: decimal.RequireFromString("6.50"), IsAvailable: true, IsPopular: true, CategoryID: &sections[2].ID,
			},
		},
		{
			product: &models.Product{
				Name: "Citronnade maison", NameI18n: text("Citronnade maison", "Homemade lemonade"),
				Price: decimal.RequireFromString("4.00"), IsAvailable: true, IsTrending: true, CategoryID: &sections[3].ID,
			},
		},
	}
	for _, item := range menu {
		if err := products.CreateProduct(ctx, item.product, item.ingredients, item.extras); err != nil {
			return err
		}
	}
	return nil
}
