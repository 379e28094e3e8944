package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacantine/menu-catalog/cms"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
)

// --- Mocks ---

type MockProductRepo struct {
	Products map[string]*models.Product
	Err      error
	lookups  []string
}

func (m *MockProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	m.lookups = append(m.lookups, id)
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Products[id]; ok {
		return p, nil
	}
	return nil, models.ErrProductNotFound
}

type failingSource struct{ err error }

func (s failingSource) Document(ctx context.Context, slug string) (*cms.Document, error) {
	return nil, s.err
}

// --- Helpers ---

func newProducts() *MockProductRepo {
	return &MockProductRepo{Products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Croque-monsieur", NameI18n: i18n.FromMap(map[string]string{"en": "Toasted ham and cheese"}), Price: decimal.NewFromInt(8), IsAvailable: true},
		"p2": {ID: "p2", Name: "Soupe du jour", Price: decimal.NewFromInt(6), IsAvailable: false},
	}}
}

var aboutPage = cms.Document{
	ID:    "doc-2",
	Slug:  "about",
	Title: i18n.Localized(i18n.Entry{Locale: "fr", Value: "À propos"}, i18n.Entry{Locale: "en", Value: "About us"}),
	Sections: []cms.Section{
		{
			Key:        "picks",
			Heading:    i18n.Localized(i18n.Entry{Locale: "fr", Value: "Nos choix"}, i18n.Entry{Locale: "en", Value: "Our picks"}),
			ProductIDs: []string{"p1", "p2", "gone"},
		},
	},
}

// --- Tests ---

func TestHandleGetPage(t *testing.T) {
	testCases := []struct {
		name               string
		slug               string
		lang               string
		source             cms.Source
		products           *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Page in English with available products only",
			slug:               "about",
			lang:               "en",
			source:             cms.NewStatic(aboutPage),
			products:           newProducts(),
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httpx.DataResponse[PageResponse]
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "About us", resp.Data.Title)
				require.Len(t, resp.Data.Sections, 1)
				assert.Equal(t, "Our picks", resp.Data.Sections[0].Heading)
				require.Len(t, resp.Data.Sections[0].Products, 1)
				assert.Equal(t, "Toasted ham and cheese", resp.Data.Sections[0].Products[0].Name)
			},
		},
		{
			name:               "Page in the default language",
			slug:               "about",
			source:             cms.NewStatic(aboutPage),
			products:           newProducts(),
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httpx.DataResponse[PageResponse]
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "À propos", resp.Data.Title)
			},
		},
		{
			name:               "Unknown page",
			slug:               "careers",
			source:             cms.NewStatic(aboutPage),
			products:           newProducts(),
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "page not found", errResp["error"])
			},
		},
		{
			name:               "CMS unavailable",
			slug:               "about",
			source:             failingSource{err: errors.New("cms: status 502")},
			products:           newProducts(),
			expectedStatusCode: http.StatusInternalServerError,
		},
		{
			name:               "Product store failure",
			slug:               "about",
			source:             cms.NewStatic(aboutPage),
			products:           &MockProductRepo{Err: errors.New("db down")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewContentHandler(tc.source, tc.products)
			req := httptest.NewRequest(http.MethodGet, "/content/pages/"+tc.slug, nil)
			req.SetPathValue("slug", tc.slug)
			if tc.lang != "" {
				req = req.WithContext(i18n.WithLang(req.Context(), tc.lang))
			}
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetPage(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleGetHome(t *testing.T) {
	handler := NewContentHandler(cms.NewStatic(cms.DefaultHome()), newProducts())
	rec := httptest.NewRecorder()

	handler.HandleGetHome(rec, httptest.NewRequest(http.MethodGet, "/content/home", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httpx.DataResponse[PageResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, cms.HomeSlug, resp.Data.Slug)
	assert.NotEmpty(t, resp.Data.Title)
}
