package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	appcatalog "github.com/lacantine/menu-catalog/app/catalog"
	"github.com/lacantine/menu-catalog/cms"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
)

// ErrPageNotFound is returned for a slug the CMS does not know.
var ErrPageNotFound = fmt.Errorf("page %w", models.ErrNotFound)

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

type SectionResponse struct {
	Key      string               `json:"key"`
	Heading  string               `json:"heading,omitempty"`
	Body     string               `json:"body,omitempty"`
	ImageURL string               `json:"imageUrl,omitempty"`
	Products []appcatalog.Product `json:"products"`
}

type PageResponse struct {
	Slug      string            `json:"slug"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary,omitempty"`
	Sections  []SectionResponse `json:"sections"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type ContentHandler struct {
	source   cms.Source
	products ProductLookup
}

func NewContentHandler(source cms.Source, products ProductLookup) *ContentHandler {
	return &ContentHandler{source: source, products: products}
}

func (h *ContentHandler) HandleGetHome(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, cms.HomeSlug)
}

func (h *ContentHandler) HandleGetPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, r.PathValue("slug"))
}

// page renders a CMS document in the request locale. Products referenced by
// a section are embedded; unavailable or deleted ones are left out.
func (h *ContentHandler) page(w http.ResponseWriter, r *http.Request, slug string) {
	doc, err := h.source.Document(r.Context(), slug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			err = ErrPageNotFound
		}
		httpx.Error(w, r, err)
		return
	}

	locale := i18n.LangFromContext(r.Context())
	resp := PageResponse{
		Slug:      doc.Slug,
		Title:     i18n.Resolve(doc.Title, locale),
		Summary:   i18n.Resolve(doc.Summary, locale),
		Sections:  make([]SectionResponse, len(doc.Sections)),
		UpdatedAt: doc.UpdatedAt,
	}
	for i, s := range doc.Sections {
		products, err := h.lookup(r.Context(), s.ProductIDs, locale)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		resp.Sections[i] = SectionResponse{
			Key:      s.Key,
			Heading:  i18n.Resolve(s.Heading, locale),
			Body:     i18n.Resolve(s.Body, locale),
			ImageURL: s.ImageURL,
			Products: products,
		}
	}
	httpx.OK(w, http.StatusOK, resp)
}

func (h *ContentHandler) lookup(ctx context.Context, ids []string, locale string) ([]appcatalog.Product, error) {
	out := make([]appcatalog.Product, 0, len(ids))
	for _, id := range ids {
		p, err := h.products.GetByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsAvailable {
			continue
		}
		out = append(out, appcatalog.NewProduct(p, locale))
	}
	return out, nil
}
