package models

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/validation"
)

type ProductsRepository struct {
	db *gorm.DB
}

// Input fields referring to other records.
const (
	FieldCategoryID    = "categoryId"
	FieldIngredientIDs = "ingredientIds"
	FieldExtraIDs      = "extraIds"
	FieldProductIDs    = "ids"
)

// editableProductColumns are written by Update. Rating and counters are
// maintained by the review repository.
var editableProductColumns = []string{
	"name", "name_i18n", "description", "description_i18n", "price", "image_url",
	"is_available", "category_id", "is_featured", "is_popular", "is_trending",
}

var sortColumns = map[catalog.SortField]string{
	catalog.SortCreatedAt:  "products.created_at",
	catalog.SortUpdatedAt:  "products.updated_at",
	catalog.SortName:       "LOWER(products.name)",
	catalog.SortPrice:      "products.price",
	catalog.SortRating:     "COALESCE(products.rating, 0)",
	catalog.SortPopularity: "products.favorite_count",
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// GetAllProducts returns every product in creation order, the snapshot the
// catalog query engine works on.
func (r *ProductsRepository) GetAllProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Order("products.created_at ASC, products.id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetFilteredProducts runs a catalog query in the database: filter, count,
// sort then paginate.
func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, filters catalog.Filters, sort catalog.Sort, page catalog.PageRequest) ([]Product, int64, error) {
	if err := filters.Validate(); err != nil {
		return nil, 0, err
	}
	if err := sort.Validate(); err != nil {
		return nil, 0, err
	}

	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	// Filter
	if filters.CategoryID != nil {
		id, err := strconv.ParseUint(*filters.CategoryID, 10, 64)
		if err != nil {
			query = query.Where("1 = 0")
		} else {
			query = query.Where("products.category_id = ?", id)
		}
	}
	if filters.Search != nil {
		ids, err := r.searchIDs(ctx, *filters.Search)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("products.id IN ?", ids)
	}
	if filters.IsAvailable != nil {
		query = query.Where("products.is_available = ?", *filters.IsAvailable)
	}
	if filters.PriceMin != nil {
		query = query.Where("products.price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("products.price <= ?", *filters.PriceMax)
	}
	if filters.RatingMin != nil {
		query = query.Where("COALESCE(products.rating, 0) >= ?", *filters.RatingMin)
	}
	if filters.IsFeatured != nil {
		query = query.Where("products.is_featured = ?", *filters.IsFeatured)
	}
	if filters.IsPopular != nil {
		query = query.Where("products.is_popular = ?", *filters.IsPopular)
	}
	if filters.IsTrending != nil {
		query = query.Where("products.is_trending = ?", *filters.IsTrending)
	}
	query = query.Session(&gorm.Session{})

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := page.Window(int(total))
	if window.Offset < 0 || int64(window.Offset) >= total {
		return []Product{}, total, nil
	}

	dir := strings.ToUpper(string(sort.Direction))
	order := sortColumns[sort.Field] + " " + dir
	if sort.Field == catalog.SortName {
		order += ", products.name " + dir
	}
	order += ", products.created_at ASC, products.id ASC"

	// Apply sort and pagination
	if err := query.
		Preload("Category").
		Order(order).
		Offset(window.Offset).
		Limit(window.Take).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// searchIDs returns the products whose default-locale texts, or texts
// rendered for the request locale, contain term. The LIKE clause only
// narrows the candidates; the match itself is decided on resolved text.
func (r *ProductsRepository) searchIDs(ctx context.Context, term string) ([]string, error) {
	needle := strings.ToLower(term)
	pattern := "%" + escapeLike(needle) + "%"

	var candidates []Product
	if err := r.db.WithContext(ctx).
		Select("id", "name", "name_i18n", "description", "description_i18n").
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(name_i18n) LIKE ? ESCAPE '\\' OR LOWER(description_i18n) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern, pattern).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	locale := i18n.LangFromContext(ctx)
	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		for _, text := range [...]string{p.Name, p.Description, p.LocalizedName(locale), p.LocalizedDescription(locale)} {
			if strings.Contains(strings.ToLower(text), needle) {
				ids = append(ids, p.ID)
				break
			}
		}
	}
	return ids, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.name") }).
		Preload("Extras", func(db *gorm.DB) *gorm.DB { return db.Order("extras.name") }).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// CreateProduct inserts p with the given ingredients and extras.
func (r *ProductsRepository) CreateProduct(ctx context.Context, p *Product, ingredientIDs, extraIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategoryRef(tx, p.CategoryID); err != nil {
			return err
		}
		ingredients, err := loadByIDs[Ingredient](tx, ingredientIDs, FieldIngredientIDs)
		if err != nil {
			return err
		}
		extras, err := loadByIDs[Extra](tx, extraIDs, FieldExtraIDs)
		if err != nil {
			return err
		}
		p.Ingredients = ingredients
		p.Extras = extras
		return tx.Create(p).Error
	})
}

// UpdateProduct writes the editable fields of p. Associations are replaced
// only when their id list is non-nil.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, p *Product, ingredientIDs, extraIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategoryRef(tx, p.CategoryID); err != nil {
			return err
		}
		res := tx.Model(&Product{ID: p.ID}).Select(editableProductColumns).Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		if ingredientIDs != nil {
			ingredients, err := loadByIDs[Ingredient](tx, ingredientIDs, FieldIngredientIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&Product{ID: p.ID}).Association("Ingredients").Replace(ingredients); err != nil {
				return err
			}
		}
		if extraIDs != nil {
			extras, err := loadByIDs[Extra](tx, extraIDs, FieldExtraIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&Product{ID: p.ID}).Association("Extras").Replace(extras); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProduct removes a product and its favorites. Rated products are
// kept: their ratings must be removed first.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&Product{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrProductNotFound
		}

		var ratings int64
		if err := tx.Model(&Rating{}).Where("product_id = ?", id).Count(&ratings).Error; err != nil {
			return err
		}
		if ratings > 0 {
			return &ConflictError{Resource: "product", Reason: "has ratings", Dependents: ratings}
		}

		if err := tx.Where("product_id = ?", id).Delete(&Favorite{}).Error; err != nil {
			return err
		}
		product := &Product{ID: id}
		if err := tx.Model(product).Association("Ingredients").Clear(); err != nil {
			return err
		}
		if err := tx.Model(product).Association("Extras").Clear(); err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
}

// BulkUpdateFlags applies flags to every listed product and returns the
// number of products updated.
func (r *ProductsRepository) BulkUpdateFlags(ctx context.Context, ids []string, flags ProductFlags) (int64, error) {
	v := make(validation.Violations)
	if len(ids) == 0 {
		v.Add(FieldProductIDs, validation.CodeRequired)
	}
	cols := flags.columns()
	if len(cols) == 0 {
		v.Add("flags", validation.CodeRequired)
	}
	if err := v.Err(); err != nil {
		return 0, err
	}

	res := r.db.WithContext(ctx).Model(&Product{}).Where("id IN ?", ids).Updates(cols)
	return res.RowsAffected, res.Error
}

func checkCategoryRef(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&Category{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return validation.Violations{FieldCategoryID: validation.CodeInvalid}.Err()
	}
	return nil
}

// loadByIDs fetches the records with the given ids, failing with a
// validation error on field when any is unknown.
func loadByIDs[T any](tx *gorm.DB, ids []uint, field string) ([]T, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := tx.Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, validation.Violations{field: validation.CodeInvalid}.Err()
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
