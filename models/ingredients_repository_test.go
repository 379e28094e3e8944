package models

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacantine/menu-catalog/validation"
)

func TestIngredientsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIngredientsRepository(db)
	ctx := context.Background()

	cheese := &Ingredient{Name: "Comté", IsVegetarian: true, IsAllergen: true}
	require.NoError(t, repo.CreateIngredient(ctx, cheese))
	require.NoError(t, repo.CreateIngredient(ctx, &Ingredient{Name: "Avocat", IsVegan: true}))

	list, err := repo.GetAllIngredients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Avocat", list[0].Name)

	err = repo.CreateIngredient(ctx, &Ingredient{Name: "Comté"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.CodeTaken, verr.Fields["name"])

	cheese.Description = "AOP"
	require.NoError(t, repo.UpdateIngredient(ctx, cheese))
	got, err := repo.GetByID(ctx, cheese.ID)
	require.NoError(t, err)
	assert.Equal(t, "AOP", got.Description)
	assert.True(t, got.IsAllergen)

	assert.ErrorIs(t, repo.UpdateIngredient(ctx, &Ingredient{ID: 99, Name: "x"}), ErrIngredientNotFound)

	products := NewProductsRepository(db)
	p := &Product{Name: "Croque", Price: decimal.RequireFromString("7")}
	require.NoError(t, products.CreateProduct(ctx, p, []uint{cheese.ID}, nil))

	var conflict *ConflictError
	require.ErrorAs(t, repo.DeleteIngredient(ctx, cheese.ID), &conflict)
	assert.Equal(t, "used by products", conflict.Reason)

	require.NoError(t, products.UpdateProduct(ctx, p, []uint{}, nil))
	require.NoError(t, repo.DeleteIngredient(ctx, cheese.ID))
	_, err = repo.GetByID(ctx, cheese.ID)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestExtrasRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExtrasRepository(db)
	ctx := context.Background()

	mayo := &Extra{Name: "Mayonnaise", Price: decimal.RequireFromString("0.50"), Type: ExtraSauce}
	require.NoError(t, repo.CreateExtra(ctx, mayo))
	require.NoError(t, repo.CreateExtra(ctx, &Extra{Name: "Frites", Price: decimal.RequireFromString("3"), Type: ExtraSide}))

	sauces, err := repo.GetAllExtras(ctx, ExtraSauce)
	require.NoError(t, err)
	require.Len(t, sauces, 1)
	assert.Equal(t, "Mayonnaise", sauces[0].Name)

	all, err := repo.GetAllExtras(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mayo.Price = decimal.RequireFromString("0.80")
	require.NoError(t, repo.UpdateExtra(ctx, mayo))
	got, err := repo.GetByID(ctx, mayo.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("0.8")))

	p := &Product{Name: "Burger", Price: decimal.RequireFromString("10")}
	require.NoError(t, NewProductsRepository(db).CreateProduct(ctx, p, nil, []uint{mayo.ID}))

	var conflict *ConflictError
	require.ErrorAs(t, repo.DeleteExtra(ctx, mayo.ID), &conflict)
	assert.Equal(t, int64(1), conflict.Dependents)
	assert.ErrorIs(t, repo.DeleteExtra(ctx, 404), ErrExtraNotFound)
}
