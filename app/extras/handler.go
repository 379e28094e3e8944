package extras

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

type ExtraResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	NameI18n i18n.Text `json:"nameI18n,omitzero"`
	Price    float64   `json:"price"`
	Type     string    `json:"type"`
}

func newExtraResponse(e *models.Extra, locale string) ExtraResponse {
	return ExtraResponse{
		ID:       e.ID,
		Name:     e.LocalizedName(locale),
		NameI18n: e.NameI18n,
		Price:    e.Price.InexactFloat64(),
		Type:     e.Type,
	}
}

type ExtraProvider interface {
	GetAllExtras(ctx context.Context, extraType string) ([]models.Extra, error)
	CreateExtra(ctx context.Context, e *models.Extra) error
	UpdateExtra(ctx context.Context, e *models.Extra) error
	DeleteExtra(ctx context.Context, id uint) error
}

type ExtraHandler struct {
	repo ExtraProvider
}

func NewExtraHandler(r ExtraProvider) *ExtraHandler {
	return &ExtraHandler{repo: r}
}

// HandleGetAll lists extras, restricted to one kind with ?type=.
func (h *ExtraHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	extraType := r.URL.Query().Get(models.FieldType)
	if extraType != "" {
		v := make(validation.Violations)
		validation.OneOf(models.FieldType, extraType, models.ExtraTypes, v)
		if err := v.Err(); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	extras, err := h.repo.GetAllExtras(r.Context(), extraType)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	response := make([]ExtraResponse, len(extras))
	for i := range extras {
		response[i] = newExtraResponse(&extras[i], locale)
	}
	httpx.All(w, response)
}

type ExtraInput struct {
	Name     string           `json:"name"`
	NameI18n i18n.Text        `json:"nameI18n"`
	Price    *decimal.Decimal `json:"price"`
	Type     string           `json:"type"`
}

func (in ExtraInput) extra(id uint) (*models.Extra, error) {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if in.Price == nil {
		v.Add("price", validation.CodeRequired)
	} else {
		validation.NonNegativeDecimal("price", *in.Price, v)
	}
	validation.OneOf(models.FieldType, in.Type, models.ExtraTypes, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &models.Extra{
		ID:       id,
		Name:     in.Name,
		NameI18n: in.NameI18n,
		Price:    *in.Price,
		Type:     in.Type,
	}, nil
}

func (h *ExtraHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input ExtraInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	extra, err := input.extra(0)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.CreateExtra(r.Context(), extra); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("extra created", "extra_id", extra.ID, "type", extra.Type)
	httpx.OK(w, http.StatusCreated, newExtraResponse(extra, i18n.LangFromContext(r.Context())))
}

func (h *ExtraHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrExtraNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input ExtraInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	extra, err := input.extra(id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.UpdateExtra(r.Context(), extra); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("extra updated", "extra_id", id)
	httpx.OK(w, http.StatusOK, newExtraResponse(extra, i18n.LangFromContext(r.Context())))
}

func (h *ExtraHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id", models.ErrExtraNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.DeleteExtra(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("extra deleted", "extra_id", id)
	httpx.OK(w, http.StatusOK, map[string]uint{"id": id})
}
