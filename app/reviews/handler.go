package reviews

import (
	"context"
	"net/http"
	"time"

	appcatalog "github.com/lacantine/menu-catalog/app/catalog"
	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
)

type ReviewProvider interface {
	RateProduct(ctx context.Context, productID string, userID uint, score int, comment string) (*models.Rating, error)
	DeleteRating(ctx context.Context, productID string, userID uint) error
	GetRatings(ctx context.Context, productID string) ([]models.Rating, error)
	ToggleFavorite(ctx context.Context, productID string, userID uint) (bool, error)
	GetFavorites(ctx context.Context, userID uint) ([]models.Product, error)
}

type RatingResponse struct {
	ID        uint      `json:"id"`
	ProductID string    `json:"productId"`
	UserID    uint      `json:"userId"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newRatingResponse(r *models.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Score:     r.Score,
		Comment:   r.Comment,
		UpdatedAt: r.UpdatedAt,
	}
}

type FavoriteResponse struct {
	ProductID string `json:"productId"`
	Favorite  bool   `json:"favorite"`
}

type ReviewHandler struct {
	repo ReviewProvider
}

func NewReviewHandler(r ReviewProvider) *ReviewHandler {
	return &ReviewHandler{repo: r}
}

// HandleGetRatings lists the ratings of a product, newest first.
func (h *ReviewHandler) HandleGetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.repo.GetRatings(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	response := make([]RatingResponse, len(ratings))
	for i := range ratings {
		response[i] = newRatingResponse(&ratings[i])
	}
	httpx.All(w, response)
}

type RatingInput struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// HandleRate records or replaces the caller's rating of a product.
func (h *ReviewHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.Authorize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input RatingInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	productID := r.PathValue("id")
	rating, err := h.repo.RateProduct(r.Context(), productID, principal.UserID, input.Score, input.Comment)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("product rated", "product_id", productID, "user_id", principal.UserID, "score", rating.Score)
	httpx.OK(w, http.StatusOK, newRatingResponse(rating))
}

func (h *ReviewHandler) HandleDeleteRating(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.Authorize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	productID := r.PathValue("id")
	if err := h.repo.DeleteRating(r.Context(), productID, principal.UserID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]string{"productId": productID})
}

// HandleToggleFavorite adds the product to the caller's favorites or
// removes it.
func (h *ReviewHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.Authorize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	productID := r.PathValue("id")
	favorite, err := h.repo.ToggleFavorite(r.Context(), productID, principal.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, FavoriteResponse{ProductID: productID, Favorite: favorite})
}

func (h *ReviewHandler) HandleGetFavorites(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.Authorize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	products, err := h.repo.GetFavorites(r.Context(), principal.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.All(w, appcatalog.NewProducts(products, i18n.LangFromContext(r.Context())))
}
