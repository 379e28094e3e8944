package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.Category
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	ListErr    error

	LastSaved        *models.Category
	LastWithInactive bool
	LastDeletedID    uint
}

func (m *MockCategoryRepo) GetAllCategories(ctx context.Context, withInactive bool) ([]models.Category, error) {
	m.LastWithInactive = withInactive
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.ID == id {
			category := c
			return &category, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

func (m *MockCategoryRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	m.LastSaved = cat
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cat.ID = 42
	if cat.Slug == "" {
		cat.Slug = models.Slugify(cat.Name)
	}
	return nil
}

func (m *MockCategoryRepo) UpdateCategory(ctx context.Context, cat *models.Category) error {
	m.LastSaved = cat
	return m.UpdateErr
}

func (m *MockCategoryRepo) DeleteCategory(ctx context.Context, id uint) error {
	m.LastDeletedID = id
	return m.DeleteErr
}

func parent(id uint) *uint { return &id }

var menu = []models.Category{
	{ID: 1, Name: "Plats", NameI18n: i18n.FromMap(map[string]string{"en": "Mains"}), Slug: "plats", IsActive: true, Position: 2},
	{ID: 2, Name: "Entrées", NameI18n: i18n.FromMap(map[string]string{"en": "Starters"}), Slug: "entrees", IsActive: true, Position: 1},
	{ID: 3, Name: "Burgers", Slug: "burgers", IsActive: true, ParentID: parent(1)},
}

// --- Tests: GET /categories ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		lang               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Tree ordered by position",
			url:  "/categories",
			lang: "en",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: menu}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httpx.ListResponse[CategoryResponse]
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				require.Len(t, resp.Data, 2)
				assert.Equal(t, "Starters", resp.Data[0].Name)
				assert.Equal(t, "Mains", resp.Data[1].Name)
				require.Len(t, resp.Data[1].Children, 1)
				assert.Equal(t, "burgers", resp.Data[1].Children[0].Slug)
			},
		},
		{
			name: "Flat list",
			url:  "/categories?flat=1",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: menu}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httpx.ListResponse[CategoryResponse]
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp.Data, 3)
				assert.Equal(t, 3, resp.Total)
				assert.Equal(t, "plats", resp.Data[0].Slug)
			},
		},
		{
			name: "Success with empty list",
			url:  "/categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: []models.Category{}}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"success":true,"data":[],"total":0,"page":1,"limit":0,"totalPages":0}`, rec.Body.String())
			},
		},
		{
			name: "Repository error",
			url:  "/categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{ListErr: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "internal server error", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.lang != "" {
				req = req.WithContext(i18n.WithLang(req.Context(), tc.lang))
			}
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.False(t, mockRepo.LastWithInactive)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleGetAllAdmin(t *testing.T) {
	mockRepo := &MockCategoryRepo{Categories: menu}
	handler := NewCategoryHandler(mockRepo)
	rec := httptest.NewRecorder()

	handler.HandleGetAllAdmin(rec, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mockRepo.LastWithInactive)
}

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		id                 string
		expectedStatusCode int
	}{
		{name: "Found", id: "3", expectedStatusCode: http.StatusOK},
		{name: "Unknown id", id: "99", expectedStatusCode: http.StatusNotFound},
		{name: "Malformed id", id: "abc", expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewCategoryHandler(&MockCategoryRepo{Categories: menu})
			req := httptest.NewRequest(http.MethodGet, "/categories/"+tc.id, nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleGet(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

// --- Tests: POST /admin/categories ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:        "Success",
			requestBody: `{"name":"Desserts maison","nameI18n":{"en":"Homemade desserts"},"position":3}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp httpx.DataResponse[CategoryResponse]
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, uint(42), resp.Data.ID)
				assert.Equal(t, "desserts-maison", resp.Data.Slug)
				assert.True(t, resp.Data.IsActive)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, "Desserts maison", repo.LastSaved.Name)
				assert.Equal(t, 3, repo.LastSaved.Position)
			},
		},
		{
			name:        "Invalid JSON body",
			requestBody: `{invalid json`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with invalid JSON")
			},
		},
		{
			name:        "Slug already taken",
			requestBody: `{"name":"Plats","slug":"plats"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: &validation.Error{Fields: validation.Violations{"slug": validation.CodeTaken}}}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp httpx.ErrorResponse
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, map[string]any{"slug": "already_taken"}, errResp.Details)
			},
		},
		{
			name:        "Repository error on create",
			requestBody: `{"name":"Boissons"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved, "CreateCategory should have been called")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest(http.MethodPost, "/admin/categories", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

// --- Tests: PUT and DELETE /admin/categories/{id} ---

func TestHandleUpdate(t *testing.T) {
	mockRepo := &MockCategoryRepo{}
	handler := NewCategoryHandler(mockRepo)
	req := httptest.NewRequest(http.MethodPut, "/admin/categories/3", strings.NewReader(`{"name":"Burgers","slug":"burgers","isActive":false,"parentId":1}`))
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()

	handler.HandleUpdate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mockRepo.LastSaved)
	assert.Equal(t, uint(3), mockRepo.LastSaved.ID)
	assert.False(t, mockRepo.LastSaved.IsActive)
	assert.Equal(t, uint(1), *mockRepo.LastSaved.ParentID)
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		id                 string
		deleteErr          error
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Success",
			id:                 "2",
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"success":true,"data":{"id":2}}`, rec.Body.String())
			},
		},
		{
			name:               "Category with products",
			id:                 "1",
			deleteErr:          &models.ConflictError{Resource: "category", Reason: "has products, move them first", Dependents: 4},
			expectedStatusCode: http.StatusConflict,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp httpx.ErrorResponse
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "category: has products, move them first (4)", errResp.Error)
			},
		},
		{
			name:               "Unknown category",
			id:                 "99",
			deleteErr:          models.ErrCategoryNotFound,
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockCategoryRepo{DeleteErr: tc.deleteErr}
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest(http.MethodDelete, "/admin/categories/"+tc.id, nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
