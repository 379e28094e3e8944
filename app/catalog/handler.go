package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	engine "github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
)

// Collections map a collection name to the flag filter it stands for.
var Collections = map[string]func(*engine.Filters){
	"featured": func(f *engine.Filters) { f.IsFeatured = engine.Bool(true) },
	"popular":  func(f *engine.Filters) { f.IsPopular = engine.Bool(true) },
	"trending": func(f *engine.Filters) { f.IsTrending = engine.Bool(true) },
}

// ErrCollectionNotFound is returned for an unknown collection name.
var ErrCollectionNotFound = fmt.Errorf("collection %w", models.ErrNotFound)

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	Rating      *float64  `json:"rating"`
	RatingCount int       `json:"ratingCount"`
	Popularity  int       `json:"popularity"`
	IsFeatured  bool      `json:"isFeatured"`
	IsPopular   bool      `json:"isPopular"`
	IsTrending  bool      `json:"isTrending"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Ingredient struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	IsVegetarian bool   `json:"isVegetarian"`
	IsVegan      bool   `json:"isVegan"`
	IsGlutenFree bool   `json:"isGlutenFree"`
	IsAllergen   bool   `json:"isAllergen"`
}

type Extra struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Type  string  `json:"type"`
}

type ProductDetail struct {
	Product
	Ingredients []Ingredient `json:"ingredients"`
	Extras      []Extra      `json:"extras"`
}

// NewProduct renders p for locale.
func NewProduct(p *models.Product, locale string) Product {
	out := Product{
		ID:          p.ID,
		Name:        p.LocalizedName(locale),
		Description: p.LocalizedDescription(locale),
		Price:       p.Price.InexactFloat64(),
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
		Rating:      p.Rating,
		RatingCount: p.RatingCount,
		Popularity:  p.FavoriteCount,
		IsFeatured:  p.IsFeatured,
		IsPopular:   p.IsPopular,
		IsTrending:  p.IsTrending,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		out.Category = &Category{
			ID:   p.Category.ID,
			Name: p.Category.LocalizedName(locale),
			Slug: p.Category.Slug,
		}
	}
	return out
}

// NewProducts renders products for locale.
func NewProducts(products []models.Product, locale string) []Product {
	out := make([]Product, len(products))
	for i := range products {
		out[i] = NewProduct(&products[i], locale)
	}
	return out
}

// NewProductDetail renders p with its ingredients and extras.
func NewProductDetail(p *models.Product, locale string) ProductDetail {
	d := ProductDetail{
		Product:     NewProduct(p, locale),
		Ingredients: make([]Ingredient, len(p.Ingredients)),
		Extras:      make([]Extra, len(p.Extras)),
	}
	for i, ing := range p.Ingredients {
		d.Ingredients[i] = Ingredient{
			ID:           ing.ID,
			Name:         ing.LocalizedName(locale),
			IsVegetarian: ing.IsVegetarian,
			IsVegan:      ing.IsVegan,
			IsGlutenFree: ing.IsGlutenFree,
			IsAllergen:   ing.IsAllergen,
		}
	}
	for i, e := range p.Extras {
		d.Extras[i] = Extra{
			ID:    e.ID,
			Name:  e.LocalizedName(locale),
			Price: e.Price.InexactFloat64(),
			Type:  e.Type,
		}
	}
	return d
}

type ProductProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

// HandleGet lists the catalog: filter, count, sort then paginate.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := engine.ParseRequest(r.URL.Query(), engine.DefaultLimit)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	h.query(w, r, req)
}

// HandleGetCollection lists one of the featured, popular or trending
// collections. Only available products are listed.
func (h *CatalogHandler) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	apply, ok := Collections[r.PathValue("collection")]
	if !ok {
		httpx.Error(w, r, ErrCollectionNotFound)
		return
	}
	req, err := engine.ParseRequest(r.URL.Query(), engine.DefaultLimit)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	apply(&req.Filters)
	req.Filters.IsAvailable = engine.Bool(true)
	h.query(w, r, req)
}

func (h *CatalogHandler) query(w http.ResponseWriter, r *http.Request, req engine.Request) {
	products, err := h.repo.GetAllProducts(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	res, err := engine.Query(models.Items(products, locale), req.Filters, req.Sort, req.Page)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	data := make([]Product, len(res.Items))
	for i, it := range res.Items {
		data[i] = NewProduct(it.Ref.(*models.Product), locale)
	}
	httpx.List(w, data, res.Total, res.Page, res.Limit, res.TotalPages)
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, NewProductDetail(product, i18n.LangFromContext(r.Context())))
}
