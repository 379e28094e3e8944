package dashboard

import (
	"context"
	"net/http"
	"strconv"

	appcatalog "github.com/lacantine/menu-catalog/app/catalog"
	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
)

const (
	defaultTop = 5
	maxTop     = 20
)

type StatsProvider interface {
	Summary(ctx context.Context, topN int) (*models.Summary, error)
}

type CollectionCounts struct {
	Featured int64 `json:"featured"`
	Popular  int64 `json:"popular"`
	Trending int64 `json:"trending"`
}

type SummaryResponse struct {
	Products          int64                `json:"products"`
	AvailableProducts int64                `json:"availableProducts"`
	Collections       CollectionCounts     `json:"collections"`
	Categories        int64                `json:"categories"`
	Ingredients       int64                `json:"ingredients"`
	Extras            int64                `json:"extras"`
	Ratings           int64                `json:"ratings"`
	Favorites         int64                `json:"favorites"`
	Users             map[auth.Role]int64  `json:"users"`
	TopRated          []appcatalog.Product `json:"topRated"`
}

type DashboardHandler struct {
	repo StatsProvider
}

func NewDashboardHandler(r StatsProvider) *DashboardHandler {
	return &DashboardHandler{repo: r}
}

// HandleGet serves the back-office overview. ?top= bounds the top rated
// list.
func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	top := defaultTop
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v >= 0 {
		top = min(v, maxTop)
	}

	s, err := h.repo.Summary(r.Context(), top)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	users := map[auth.Role]int64{auth.RoleUser: 0, auth.RoleEmployee: 0, auth.RoleAdmin: 0}
	for role, n := range s.UsersByRole {
		users[role] = n
	}
	httpx.OK(w, http.StatusOK, SummaryResponse{
		Products:          s.Products,
		AvailableProducts: s.AvailableProducts,
		Collections:       CollectionCounts{Featured: s.Featured, Popular: s.Popular, Trending: s.Trending},
		Categories:        s.Categories,
		Ingredients:       s.Ingredients,
		Extras:            s.Extras,
		Ratings:           s.Ratings,
		Favorites:         s.Favorites,
		Users:             users,
		TopRated:          appcatalog.NewProducts(s.TopRated, i18n.LangFromContext(r.Context())),
	})
}
