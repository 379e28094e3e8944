package products

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	appcatalog "github.com/lacantine/menu-catalog/app/catalog"
	"github.com/lacantine/menu-catalog/auth"
	engine "github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

type ProductStore interface {
	GetFilteredProducts(ctx context.Context, filters engine.Filters, sort engine.Sort, page engine.PageRequest) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product, ingredientIDs, extraIDs []uint) error
	UpdateProduct(ctx context.Context, p *models.Product, ingredientIDs, extraIDs []uint) error
	DeleteProduct(ctx context.Context, id string) error
	BulkUpdateFlags(ctx context.Context, ids []string, flags models.ProductFlags) (int64, error)
}

type PreferencesProvider interface {
	GetPreferences(ctx context.Context) (*models.AdminPreferences, error)
}

// AdminProduct is the back-office view of a product: the rendered product
// plus the raw translations and references.
type AdminProduct struct {
	appcatalog.ProductDetail
	NameI18n        i18n.Text `json:"nameI18n"`
	DescriptionI18n i18n.Text `json:"descriptionI18n"`
	CategoryID      *uint     `json:"categoryId"`
}

func newAdminProduct(p *models.Product, locale string) AdminProduct {
	return AdminProduct{
		ProductDetail:   appcatalog.NewProductDetail(p, locale),
		NameI18n:        p.NameI18n,
		DescriptionI18n: p.DescriptionI18n,
		CategoryID:      p.CategoryID,
	}
}

// ProductInput is the body of create and update requests. On update, nil
// ingredient or extra ids keep the current associations.
type ProductInput struct {
	Name            string           `json:"name"`
	NameI18n        i18n.Text        `json:"nameI18n"`
	Description     string           `json:"description"`
	DescriptionI18n i18n.Text        `json:"descriptionI18n"`
	Price           *decimal.Decimal `json:"price"`
	ImageURL        string           `json:"imageUrl"`
	IsAvailable     *bool            `json:"isAvailable"`
	CategoryID      *uint            `json:"categoryId"`
	IsFeatured      bool             `json:"isFeatured"`
	IsPopular       bool             `json:"isPopular"`
	IsTrending      bool             `json:"isTrending"`
	IngredientIDs   []uint           `json:"ingredientIds"`
	ExtraIDs        []uint           `json:"extraIds"`
}

func (in ProductInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if in.Price == nil {
		v.Add("price", validation.CodeRequired)
	} else {
		validation.NonNegativeDecimal("price", *in.Price, v)
	}
	return v.Err()
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.NameI18n = in.NameI18n
	p.Description = in.Description
	p.DescriptionI18n = in.DescriptionI18n
	p.Price = *in.Price
	p.ImageURL = in.ImageURL
	p.IsAvailable = in.IsAvailable == nil || *in.IsAvailable
	p.CategoryID = in.CategoryID
	p.IsFeatured = in.IsFeatured
	p.IsPopular = in.IsPopular
	p.IsTrending = in.IsTrending
}

// BulkInput sets collection or availability flags on several products.
type BulkInput struct {
	IDs         []string `json:"ids"`
	IsAvailable *bool    `json:"isAvailable"`
	IsFeatured  *bool    `json:"isFeatured"`
	IsPopular   *bool    `json:"isPopular"`
	IsTrending  *bool    `json:"isTrending"`
}

type ProductHandler struct {
	repo  ProductStore
	prefs PreferencesProvider
}

func NewProductHandler(r ProductStore, prefs PreferencesProvider) *ProductHandler {
	return &ProductHandler{repo: r, prefs: prefs}
}

// HandleList runs the catalog query in the database. Without explicit
// limit or sort, the admin preferences apply.
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.prefs.GetPreferences(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	req, err := engine.ParseRequest(q, prefs.DefaultPageSize)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if q.Get(engine.ParamSort) == "" && q.Get(engine.ParamSortBy) == "" && q.Get(engine.ParamSortOrder) == "" {
		if s, err := engine.CompileSort(prefs.DefaultSort); err == nil {
			req.Sort = s
		}
	}

	products, total, err := h.repo.GetFilteredProducts(r.Context(), req.Filters, req.Sort, req.Page)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	data := make([]AdminProduct, len(products))
	for i := range products {
		data[i] = newAdminProduct(&products[i], locale)
	}
	window := req.Page.Window(int(total))
	httpx.List(w, data, int(total), window.Page, window.Limit, window.TotalPages)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newAdminProduct(p, i18n.LangFromContext(r.Context())))
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := input.validate(); err != nil {
		httpx.Error(w, r, err)
		return
	}

	p := &models.Product{}
	input.apply(p)
	ingredientIDs := input.IngredientIDs
	if ingredientIDs == nil {
		ingredientIDs = []uint{}
	}
	extraIDs := input.ExtraIDs
	if extraIDs == nil {
		extraIDs = []uint{}
	}
	if err := h.repo.CreateProduct(r.Context(), p, ingredientIDs, extraIDs); err != nil {
		httpx.Error(w, r, err)
		return
	}

	h.audit(r, "product created", p.ID)
	h.respond(w, r, http.StatusCreated, p.ID)
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var input ProductInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := input.validate(); err != nil {
		httpx.Error(w, r, err)
		return
	}

	p := &models.Product{ID: id}
	input.apply(p)
	if err := h.repo.UpdateProduct(r.Context(), p, input.IngredientIDs, input.ExtraIDs); err != nil {
		httpx.Error(w, r, err)
		return
	}

	h.audit(r, "product updated", id)
	h.respond(w, r, http.StatusOK, id)
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	h.audit(r, "product deleted", id)
	httpx.OK(w, http.StatusOK, map[string]string{"id": id})
}

// HandleBulkUpdate sets flags on many products at once.
func (h *ProductHandler) HandleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var input BulkInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	n, err := h.repo.BulkUpdateFlags(r.Context(), input.IDs, models.ProductFlags{
		IsAvailable: input.IsAvailable,
		IsFeatured:  input.IsFeatured,
		IsPopular:   input.IsPopular,
		IsTrending:  input.IsTrending,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("products updated in bulk", "requested", len(input.IDs), "updated", n)
	httpx.OK(w, http.StatusOK, map[string]int64{"updated": n})
}

// respond reloads the product so the response carries its associations.
func (h *ProductHandler) respond(w http.ResponseWriter, r *http.Request, status int, id string) {
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, status, newAdminProduct(p, i18n.LangFromContext(r.Context())))
}

func (h *ProductHandler) audit(r *http.Request, msg, productID string) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	logging.FromContext(r.Context()).Info(msg, "product_id", productID, "user_id", principal.UserID)
}
