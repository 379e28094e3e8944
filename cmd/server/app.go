package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	appcatalog "github.com/lacantine/menu-catalog/app/catalog"
	"github.com/lacantine/menu-catalog/app/categories"
	"github.com/lacantine/menu-catalog/app/content"
	"github.com/lacantine/menu-catalog/app/dashboard"
	"github.com/lacantine/menu-catalog/app/extras"
	"github.com/lacantine/menu-catalog/app/ingredients"
	"github.com/lacantine/menu-catalog/app/products"
	"github.com/lacantine/menu-catalog/app/reviews"
	"github.com/lacantine/menu-catalog/app/settings"
	"github.com/lacantine/menu-catalog/app/users"
	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/cms"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
)

const langCookieName = "lang"

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	handler  http.Handler
	db       *gorm.DB
	sessions *auth.Sessions
	content  cms.Source
	settings *models.SettingsRepository
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, sessions *auth.Sessions, source cms.Source, logger *slog.Logger) *App {
	app := &App{
		mux:      http.NewServeMux(),
		db:       db,
		sessions: sessions,
		content:  source,
		settings: models.NewSettingsRepository(db),
	}
	app.setupRoutes()

	usersRepo := models.NewUsersRepository(db)
	app.handler = logging.Middleware(logger)(
		withRecover(
			sessions.Middleware(usersRepo.ResolveRole)(
				app.withLanguage(app.mux),
			),
		),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	productsRepo := models.NewProductsRepository(a.db)
	reviewsRepo := models.NewReviewsRepository(a.db)

	catalogHandler := appcatalog.NewCatalogHandler(productsRepo)
	productHandler := products.NewProductHandler(productsRepo, a.settings)
	categoryHandler := categories.NewCategoryHandler(models.NewCategoriesRepository(a.db))
	ingredientHandler := ingredients.NewIngredientHandler(models.NewIngredientsRepository(a.db))
	extraHandler := extras.NewExtraHandler(models.NewExtrasRepository(a.db))
	reviewHandler := reviews.NewReviewHandler(reviewsRepo)
	settingsHandler := settings.NewSettingsHandler(a.settings)
	contentHandler := content.NewContentHandler(a.content, productsRepo)
	userHandler := users.NewUserHandler(models.NewUsersRepository(a.db), a.sessions)
	dashboardHandler := dashboard.NewDashboardHandler(models.NewStatsRepository(a.db))

	authenticated := auth.RequireRole()
	staff := auth.RequireRole(auth.Staff...)
	admin := auth.RequireRole(auth.RoleAdmin)

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /health", a.health)

	a.mux.HandleFunc("GET /catalog", catalogHandler.HandleGet)
	a.mux.HandleFunc("GET /catalog/{id}", catalogHandler.HandleGetProduct)
	a.mux.HandleFunc("GET /catalog/collections/{collection}", catalogHandler.HandleGetCollection)
	a.mux.HandleFunc("GET /products/{id}/ratings", reviewHandler.HandleGetRatings)

	a.mux.HandleFunc("GET /categories", categoryHandler.HandleGetAll)
	a.mux.HandleFunc("GET /categories/{id}", categoryHandler.HandleGet)
	a.mux.HandleFunc("GET /ingredients", ingredientHandler.HandleGetAll)
	a.mux.HandleFunc("GET /extras", extraHandler.HandleGetAll)

	a.mux.HandleFunc("GET /content/home", contentHandler.HandleGetHome)
	a.mux.HandleFunc("GET /content/pages/{slug}", contentHandler.HandleGetPage)
	a.mux.HandleFunc("GET /settings", settingsHandler.HandleGet)

	a.mux.HandleFunc("POST /auth/register", userHandler.HandleRegister)
	a.mux.HandleFunc("POST /auth/login", userHandler.HandleLogin)
	a.mux.HandleFunc("POST /auth/logout", userHandler.HandleLogout)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /auth/me", authenticated(http.HandlerFunc(userHandler.HandleMe)))
	a.mux.Handle("POST /catalog/{id}/ratings", authenticated(http.HandlerFunc(reviewHandler.HandleRate)))
	a.mux.Handle("DELETE /catalog/{id}/ratings", authenticated(http.HandlerFunc(reviewHandler.HandleDeleteRating)))
	a.mux.Handle("POST /catalog/{id}/favorite", authenticated(http.HandlerFunc(reviewHandler.HandleToggleFavorite)))
	a.mux.Handle("GET /me/favorites", authenticated(http.HandlerFunc(reviewHandler.HandleGetFavorites)))

	// ─────────────────────────────────────────────────────────────────────────
	// Staff routes (EMPLOYEE, ADMIN)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /admin/products", staff(http.HandlerFunc(productHandler.HandleList)))
	a.mux.Handle("GET /admin/products/{id}", staff(http.HandlerFunc(productHandler.HandleGet)))
	a.mux.Handle("POST /admin/products", staff(http.HandlerFunc(productHandler.HandleCreate)))
	a.mux.Handle("PUT /admin/products/{id}", staff(http.HandlerFunc(productHandler.HandleUpdate)))
	a.mux.Handle("PATCH /admin/products/bulk", staff(http.HandlerFunc(productHandler.HandleBulkUpdate)))

	a.mux.Handle("GET /admin/categories", staff(http.HandlerFunc(categoryHandler.HandleGetAllAdmin)))
	a.mux.Handle("POST /admin/categories", staff(http.HandlerFunc(categoryHandler.HandleCreate)))
	a.mux.Handle("PUT /admin/categories/{id}", staff(http.HandlerFunc(categoryHandler.HandleUpdate)))

	a.mux.Handle("POST /admin/ingredients", staff(http.HandlerFunc(ingredientHandler.HandleCreate)))
	a.mux.Handle("PUT /admin/ingredients/{id}", staff(http.HandlerFunc(ingredientHandler.HandleUpdate)))

	a.mux.Handle("POST /admin/extras", staff(http.HandlerFunc(extraHandler.HandleCreate)))
	a.mux.Handle("PUT /admin/extras/{id}", staff(http.HandlerFunc(extraHandler.HandleUpdate)))

	a.mux.Handle("GET /admin/dashboard", staff(http.HandlerFunc(dashboardHandler.HandleGet)))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("DELETE /admin/products/{id}", admin(http.HandlerFunc(productHandler.HandleDelete)))
	a.mux.Handle("DELETE /admin/categories/{id}", admin(http.HandlerFunc(categoryHandler.HandleDelete)))
	a.mux.Handle("DELETE /admin/ingredients/{id}", admin(http.HandlerFunc(ingredientHandler.HandleDelete)))
	a.mux.Handle("DELETE /admin/extras/{id}", admin(http.HandlerFunc(extraHandler.HandleDelete)))

	a.mux.Handle("GET /admin/settings", admin(http.HandlerFunc(settingsHandler.HandleGetAdmin)))
	a.mux.Handle("PUT /admin/settings", admin(http.HandlerFunc(settingsHandler.HandleUpdate)))
	a.mux.Handle("GET /admin/preferences", admin(http.HandlerFunc(settingsHandler.HandleGetPreferences)))
	a.mux.Handle("PUT /admin/preferences", admin(http.HandlerFunc(settingsHandler.HandleUpdatePreferences)))
	a.mux.Handle("PUT /admin/users/{id}/role", admin(http.HandlerFunc(userHandler.HandleSetRole)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// withLanguage selects the request language among the supported locales:
// ?lang= first (remembered in a cookie), then the cookie, then
// Accept-Language, then the default locale of the site settings.
func (a *App) withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		supported, fallback := a.locales(r.Context())

		lang := ""
		if q := i18n.Normalize(r.URL.Query().Get("lang")); q != "" && i18n.IsSupported(q, supported) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     langCookieName,
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if lang == "" {
			if c, err := r.Cookie(langCookieName); err == nil {
				if v := i18n.Normalize(c.Value); i18n.IsSupported(v, supported) {
					lang = v
				}
			}
		}
		if lang == "" {
			if h := r.Header.Get("Accept-Language"); h != "" {
				lang = i18n.DetectLanguage(h, supported...)
			}
		}
		if lang == "" {
			lang = fallback
		}

		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// withRecover answers 500 instead of dropping the connection when a handler
// panics.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				httpx.Error(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (a *App) locales(ctx context.Context) ([]string, string) {
	s, err := a.settings.GetSettings(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("settings unavailable, using default locales", "error", err)
		d := models.DefaultSettings()
		s = &d
	}
	return []string(s.SupportedLocales), s.DefaultLocale
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
