package models

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/validation"
)

// FieldType is the input field of Extra.Type.
const FieldType = "type"

type IngredientsRepository struct {
	db *gorm.DB
}

func NewIngredientsRepository(db *gorm.DB) *IngredientsRepository {
	return &IngredientsRepository{db: db}
}

func (r *IngredientsRepository) GetAllIngredients(ctx context.Context) ([]Ingredient, error) {
	var ingredients []Ingredient
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientsRepository) GetByID(ctx context.Context, id uint) (*Ingredient, error) {
	var i Ingredient
	if err := r.db.WithContext(ctx).First(&i, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *IngredientsRepository) CreateIngredient(ctx context.Context, i *Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName[Ingredient](tx, i.Name, 0); err != nil {
			return err
		}
		return tx.Create(i).Error
	})
}

func (r *IngredientsRepository) UpdateIngredient(ctx context.Context, i *Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName[Ingredient](tx, i.Name, i.ID); err != nil {
			return err
		}
		res := tx.Model(&Ingredient{ID: i.ID}).
			Select("name", "name_i18n", "description", "is_vegetarian", "is_vegan", "is_gluten_free", "is_allergen").
			Updates(i)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrIngredientNotFound
		}
		return nil
	})
}

// DeleteIngredient removes an ingredient no product uses.
func (r *IngredientsRepository) DeleteIngredient(ctx context.Context, id uint) error {
	return deleteUnattached[Ingredient](r.db.WithContext(ctx), id, "product_ingredients", "ingredient_id", "ingredient", ErrIngredientNotFound)
}

type ExtrasRepository struct {
	db *gorm.DB
}

func NewExtrasRepository(db *gorm.DB) *ExtrasRepository {
	return &ExtrasRepository{db: db}
}

// GetAllExtras lists extras by name, optionally restricted to one type.
func (r *ExtrasRepository) GetAllExtras(ctx context.Context, extraType string) ([]Extra, error) {
	var extras []Extra
	query := r.db.WithContext(ctx).Order("name ASC")
	if extraType != "" {
		query = query.Where("type = ?", extraType)
	}
	if err := query.Find(&extras).Error; err != nil {
		return nil, err
	}
	return extras, nil
}

func (r *ExtrasRepository) GetByID(ctx context.Context, id uint) (*Extra, error) {
	var e Extra
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExtraNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExtrasRepository) CreateExtra(ctx context.Context, e *Extra) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName[Extra](tx, e.Name, 0); err != nil {
			return err
		}
		return tx.Create(e).Error
	})
}

func (r *ExtrasRepository) UpdateExtra(ctx context.Context, e *Extra) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName[Extra](tx, e.Name, e.ID); err != nil {
			return err
		}
		res := tx.Model(&Extra{ID: e.ID}).Select("name", "name_i18n", "price", "type").Updates(e)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrExtraNotFound
		}
		return nil
	})
}

// DeleteExtra removes an extra no product offers.
func (r *ExtrasRepository) DeleteExtra(ctx context.Context, id uint) error {
	return deleteUnattached[Extra](r.db.WithContext(ctx), id, "product_extras", "extra_id", "extra", ErrExtraNotFound)
}

func uniqueName[T any](tx *gorm.DB, name string, exceptID uint) error {
	var taken int64
	q := tx.Model(new(T)).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return validation.Violations{"name": validation.CodeTaken}.Err()
	}
	return nil
}

// deleteUnattached deletes the T with id unless a row of joinTable still
// references it through column.
func deleteUnattached[T any](db *gorm.DB, id uint, joinTable, column, resource string, notFound error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(new(T)).Where("id = ?", id).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			return notFound
		}

		var attached int64
		if err := tx.Table(joinTable).Where(column+" = ?", id).Count(&attached).Error; err != nil {
			return err
		}
		if attached > 0 {
			return &ConflictError{Resource: resource, Reason: "used by products", Dependents: attached}
		}

		return tx.Delete(new(T), id).Error
	})
}
