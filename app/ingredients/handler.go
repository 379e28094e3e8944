package ingredients

import (
	"context"
	"net/http"

	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

type IngredientResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	NameI18n     i18n.Text `json:"nameI18n,omitzero"`
	Description  string    `json:"description,omitempty"`
	IsVegetarian bool      `json:"isVegetarian"`
	IsVegan      bool      `json:"isVegan"`
	IsGlutenFree bool      `json:"isGlutenFree"`
	IsAllergen   bool      `json:"isAllergen"`
}

func newIngredientResponse(i *models.Ingredient, locale string) IngredientResponse {
	return IngredientResponse{
		ID:           i.ID,
		Name:         i.LocalizedName(locale),
		NameI18n:     i.NameI18n,
		Description:  i.Description,
		IsVegetarian: i.IsVegetarian,
		IsVegan:      i.IsVegan,
		IsGlutenFree: i.IsGlutenFree,
		IsAllergen:   i.IsAllergen,
	}
}

type IngredientProvider interface {
	GetAllIngredients(ctx context.Context) ([]models.Ingredient, error)
	CreateIngredient(ctx context.Context, i *models.Ingredient) error
	UpdateIngredient(ctx context.Context, i *models.Ingredient) error
	DeleteIngredient(ctx context.Context, id uint) error
}

type IngredientHandler struct {
	repo IngredientProvider
}

func NewIngredientHandler(r IngredientProvider) *IngredientHandler {
	return &IngredientHandler{repo: r}
}

func (h *IngredientHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.repo.GetAllIngredients(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	response := make([]IngredientResponse, len(ingredients))
	for i := range ingredients {
		response[i] = newIngredientResponse(&ingredients[i], locale)
	}
	httpx.All(w, response)
}

type IngredientInput struct {
	Name         string    `json:"name"`
	NameI18n     i18n.Text `json:"nameI18n"`
	Description  string    `json:"description"`
	IsVegetarian bool      `json:"isVegetarian"`
	IsVegan      bool      `json:"isVegan"`
	IsGlutenFree bool      `json:"isGlutenFree"`
	IsAllergen   bool      `json:"isAllergen"`
}

// ingredient validates the input. A vegan ingredient is vegetarian.
func (in IngredientInput) ingredient(id uint) (*models.Ingredient, error) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &models.Ingredient{
		ID:           id,
		Name:         in.Name,
		NameI18n:     in.NameI18n,
		Description:  in.Description,
		IsVegetarian: in.IsVegetarian || in.IsVegan,
		IsVegan:      in.IsVegan,
		IsGlutenFree: in.IsGlutenFree,
		IsAllergen:   in.IsAllergen,
	}, nil
}

func (h *IngredientHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input IngredientInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	ingredient, err := input.ingredient(0)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.CreateIngredient(r.Context(), ingredient); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("ingredient created", "ingredient_id", ingredient.ID)
	httpx.OK(w, http.StatusCreated, newIngredientResponse(ingredient, i18n.LangFromContext(r.Context())))
}

func (h *IngredientHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrIngredientNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input IngredientInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	ingredient, err := input.ingredient(id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.UpdateIngredient(r.Context(), ingredient); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("ingredient updated", "ingredient_id", id)
	httpx.OK(w, http.StatusOK, newIngredientResponse(ingredient, i18n.LangFromContext(r.Context())))
}

func (h *IngredientHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrIngredientNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.DeleteIngredient(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("ingredient deleted", "ingredient_id", id)
	httpx.OK(w, http.StatusOK, map[string]uint{"id": id})
}
