package models

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/validation"
)

// Input fields of a category.
const (
	FieldSlug     = "slug"
	FieldParentID = "parentId"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// GetAllCategories returns every category ordered by Position then Name.
// Inactive categories are included only when withInactive is set.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context, withInactive bool) ([]Category, error) {
	var categories []Category
	query := r.db.WithContext(ctx).Order("position ASC, name ASC, id ASC")
	if !withInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts c. The slug is derived from the name when empty
// and must be unique; the parent must exist.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkCategory(tx, c); err != nil {
			return err
		}
		return tx.Create(c).Error
	})
}

// UpdateCategory writes every field of c. A category cannot become its own
// ancestor.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Category{}).Where("id = ?", c.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			return ErrCategoryNotFound
		}
		if err := r.checkCategory(tx, c); err != nil {
			return err
		}
		return tx.Model(&Category{ID: c.ID}).
			Select("name", "name_i18n", "slug", "is_active", "parent_id", "position").
			Updates(c).Error
	})
}

// DeleteCategory removes a category that has neither children nor
// products.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Category{}).Where("id = ?", id).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			return ErrCategoryNotFound
		}

		var children int64
		if err := tx.Model(&Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return &ConflictError{Resource: "category", Reason: "has subcategories, move them first", Dependents: children}
		}

		var products int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return &ConflictError{Resource: "category", Reason: "has products, move them first", Dependents: products}
		}

		return tx.Delete(&Category{}, id).Error
	})
}

func (r *CategoriesRepository) checkCategory(tx *gorm.DB, c *Category) error {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.Required(FieldSlug, c.Slug, v)

	if c.Slug != "" {
		var taken int64
		q := tx.Model(&Category{}).Where("slug = ?", c.Slug)
		if c.ID != 0 {
			q = q.Where("id <> ?", c.ID)
		}
		if err := q.Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			v.Add(FieldSlug, validation.CodeTaken)
		}
	}

	if c.ParentID != nil {
		ok, err := r.validParent(tx, c.ID, *c.ParentID)
		if err != nil {
			return err
		}
		if !ok {
			v.Add(FieldParentID, validation.CodeInvalid)
		}
	}
	return v.Err()
}

// validParent walks up from parentID and reports whether it exists and
// does not lead back to id.
func (r *CategoriesRepository) validParent(tx *gorm.DB, id, parentID uint) (bool, error) {
	seen := map[uint]bool{}
	current := &parentID
	for current != nil {
		if id != 0 && *current == id {
			return false, nil
		}
		if seen[*current] {
			return false, nil
		}
		seen[*current] = true

		var parent Category
		if err := tx.Select("id", "parent_id").First(&parent, *current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		current = parent.ParentID
	}
	return true, nil
}
