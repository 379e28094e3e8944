package ingredients

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
)

// --- Mock Repository ---

type MockIngredientRepo struct {
	Ingredients []models.Ingredient
	Err         error

	LastSaved     *models.Ingredient
	LastDeletedID uint
}

func (m *MockIngredientRepo) GetAllIngredients(ctx context.Context) ([]models.Ingredient, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Ingredients, nil
}

func (m *MockIngredientRepo) CreateIngredient(ctx context.Context, i *models.Ingredient) error {
	m.LastSaved = i
	if m.Err != nil {
		return m.Err
	}
	i.ID = 7
	return nil
}

func (m *MockIngredientRepo) UpdateIngredient(ctx context.Context, i *models.Ingredient) error {
	m.LastSaved = i
	return m.Err
}

func (m *MockIngredientRepo) DeleteIngredient(ctx context.Context, id uint) error {
	m.LastDeletedID = id
	return m.Err
}

// --- Tests ---

func TestHandleGetAll(t *testing.T) {
	mockRepo := &MockIngredientRepo{Ingredients: []models.Ingredient{
		{ID: 1, Name: "Basilic", NameI18n: i18n.Localized(i18n.Entry{Locale: "fr", Value: "Basilic"}, i18n.Entry{Locale: "en", Value: "Basil"}), IsVegan: true, IsVegetarian: true},
		{ID: 2, Name: "Cheddar", IsVegetarian: true, IsAllergen: true},
	}}
	handler := NewIngredientHandler(mockRepo)
	req := httptest.NewRequest(http.MethodGet, "/ingredients", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "en"))
	rec := httptest.NewRecorder()

	handler.HandleGetAll(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httpx.ListResponse[IngredientResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "Basil", resp.Data[0].Name)
	assert.Equal(t, "Cheddar", resp.Data[1].Name)
	assert.True(t, resp.Data[1].IsAllergen)
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		mockRepoSetup      func() *MockIngredientRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockIngredientRepo)
	}{
		{
			name:        "Success, vegan implies vegetarian",
			requestBody: `{"name":"Tofu","isVegan":true}`,
			mockRepoSetup: func() *MockIngredientRepo {
				return &MockIngredientRepo{}
			},
			expectedStatusCode: http.StatusCreated,
			checkRepoCall: func(t *testing.T, repo *MockIngredientRepo) {
				require.NotNil(t, repo.LastSaved)
				assert.Equal(t, "Tofu", repo.LastSaved.Name)
				assert.True(t, repo.LastSaved.IsVegetarian)
			},
		},
		{
			name:        "Missing name",
			requestBody: `{"name":"  "}`,
			mockRepoSetup: func() *MockIngredientRepo {
				return &MockIngredientRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkRepoCall: func(t *testing.T, repo *MockIngredientRepo) {
				assert.Nil(t, repo.LastSaved, "CreateIngredient should not be called")
			},
		},
		{
			name:        "Repository error",
			requestBody: `{"name":"Tofu"}`,
			mockRepoSetup: func() *MockIngredientRepo {
				return &MockIngredientRepo{Err: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewIngredientHandler(mockRepo)
			req := httptest.NewRequest(http.MethodPost, "/admin/ingredients", strings.NewReader(tc.requestBody))
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	mockRepo := &MockIngredientRepo{Err: models.ErrIngredientNotFound}
	handler := NewIngredientHandler(mockRepo)
	req := httptest.NewRequest(http.MethodPut, "/admin/ingredients/9", strings.NewReader(`{"name":"Oignon"}`))
	req.SetPathValue("id", "9")
	rec := httptest.NewRecorder()

	handler.HandleUpdate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, uint(9), mockRepo.LastSaved.ID)
}

func TestHandleDelete(t *testing.T) {
	testCases := []struct {
		name               string
		repoErr            error
		expectedStatusCode int
	}{
		{name: "Success", expectedStatusCode: http.StatusOK},
		{name: "Used by products", repoErr: &models.ConflictError{Resource: "ingredient", Reason: "used by products", Dependents: 3}, expectedStatusCode: http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockIngredientRepo{Err: tc.repoErr}
			handler := NewIngredientHandler(mockRepo)
			req := httptest.NewRequest(http.MethodDelete, "/admin/ingredients/4", nil)
			req.SetPathValue("id", "4")
			rec := httptest.NewRecorder()

			handler.HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, uint(4), mockRepo.LastDeletedID)
		})
	}
}
