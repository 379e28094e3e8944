package categories

import (
	"context"
	"net/http"

	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
)

type CategoryResponse struct {
	ID       uint               `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	IsActive bool               `json:"isActive"`
	ParentID *uint              `json:"parentId"`
	Position int                `json:"position"`
	Children []CategoryResponse `json:"children,omitempty"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context, withInactive bool) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func newCategoryResponse(c *models.Category, locale string) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.LocalizedName(locale),
		Slug:     c.Slug,
		IsActive: c.IsActive,
		ParentID: c.ParentID,
		Position: c.Position,
	}
}

func newTreeResponse(nodes []*models.CategoryNode, locale string) []CategoryResponse {
	out := make([]CategoryResponse, len(nodes))
	for i, n := range nodes {
		out[i] = newCategoryResponse(&n.Category, locale)
		if len(n.Children) > 0 {
			out[i].Children = newTreeResponse(n.Children, locale)
		}
	}
	return out
}

// HandleGetAll lists active categories as a tree, or as a flat list with
// ?flat=1.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// HandleGetAllAdmin is HandleGetAll including inactive categories.
func (h *CategoryHandler) HandleGetAllAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request, withInactive bool) {
	categories, err := h.repo.GetAllCategories(r.Context(), withInactive)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	var response []CategoryResponse
	switch r.URL.Query().Get("flat") {
	case "1", "true":
		response = make([]CategoryResponse, len(categories))
		for i := range categories {
			response[i] = newCategoryResponse(&categories[i], locale)
		}
	default:
		response = newTreeResponse(models.BuildTree(categories), locale)
	}
	httpx.All(w, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrCategoryNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newCategoryResponse(category, i18n.LangFromContext(r.Context())))
}

// CategoryInput is the body of create and update requests. IsActive
// defaults to true.
type CategoryInput struct {
	Name     string    `json:"name"`
	NameI18n i18n.Text `json:"nameI18n"`
	Slug     string    `json:"slug"`
	IsActive *bool     `json:"isActive"`
	ParentID *uint     `json:"parentId"`
	Position int       `json:"position"`
}

func (in CategoryInput) category(id uint) *models.Category {
	return &models.Category{
		ID:       id,
		Name:     in.Name,
		NameI18n: in.NameI18n,
		Slug:     in.Slug,
		IsActive: in.IsActive == nil || *in.IsActive,
		ParentID: in.ParentID,
		Position: in.Position,
	}
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	category := input.category(0)
	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("category created", "category_id", category.ID, "slug", category.Slug)
	httpx.OK(w, http.StatusCreated, newCategoryResponse(category, i18n.LangFromContext(r.Context())))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrCategoryNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input CategoryInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	category := input.category(id)
	if err := h.repo.UpdateCategory(r.Context(), category); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("category updated", "category_id", id)
	httpx.OK(w, http.StatusOK, newCategoryResponse(category, i18n.LangFromContext(r.Context())))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrCategoryNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("category deleted", "category_id", id)
	httpx.OK(w, http.StatusOK, map[string]uint{"id": id})
}
