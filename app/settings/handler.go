package settings

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/httpx"
	"github.com/lacantine/menu-catalog/i18n"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

type SettingsProvider interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
	GetPreferences(ctx context.Context) (*models.AdminPreferences, error)
	SavePreferences(ctx context.Context, p *models.AdminPreferences) error
}

// SettingsResponse is the public view of the site settings, with the site
// name resolved to one locale.
type SettingsResponse struct {
	SiteName         string         `json:"siteName"`
	DefaultLocale    string         `json:"defaultLocale"`
	SupportedLocales []string       `json:"supportedLocales"`
	ContactEmail     string         `json:"contactEmail,omitempty"`
	Currency         string         `json:"currency"`
	Metadata         map[string]any `json:"metadata"`
}

// AdminSettingsResponse carries every translation of the site name.
type AdminSettingsResponse struct {
	SettingsResponse
	SiteNameI18n i18n.Text `json:"siteNameI18n"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type PreferencesResponse struct {
	DefaultPageSize int       `json:"defaultPageSize"`
	DefaultSort     string    `json:"defaultSort"`
	Locale          string    `json:"locale"`
	Theme           string    `json:"theme"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func newSettingsResponse(s *models.Settings, locale string) SettingsResponse {
	supported := []string(s.SupportedLocales)
	if supported == nil {
		supported = []string{}
	}
	metadata := map[string]any(s.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return SettingsResponse{
		SiteName:         i18n.Resolve(s.SiteName, locale),
		DefaultLocale:    s.DefaultLocale,
		SupportedLocales: supported,
		ContactEmail:     s.ContactEmail,
		Currency:         s.Currency,
		Metadata:         metadata,
	}
}

func newAdminSettingsResponse(s *models.Settings, locale string) AdminSettingsResponse {
	return AdminSettingsResponse{
		SettingsResponse: newSettingsResponse(s, locale),
		SiteNameI18n:     s.SiteName,
		UpdatedAt:        s.UpdatedAt,
	}
}

func newPreferencesResponse(p *models.AdminPreferences) PreferencesResponse {
	return PreferencesResponse{
		DefaultPageSize: p.DefaultPageSize,
		DefaultSort:     p.DefaultSort,
		Locale:          p.Locale,
		Theme:           p.Theme,
		UpdatedAt:       p.UpdatedAt,
	}
}

type SettingsHandler struct {
	repo SettingsProvider
}

func NewSettingsHandler(r SettingsProvider) *SettingsHandler {
	return &SettingsHandler{repo: r}
}

// HandleGet serves the public settings in the request locale.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetSettings(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newSettingsResponse(s, i18n.LangFromContext(r.Context())))
}

// HandleGetAdmin serves the settings with every translation, for editing.
func (h *SettingsHandler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetSettings(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newAdminSettingsResponse(s, i18n.LangFromContext(r.Context())))
}

type SettingsInput struct {
	SiteName         i18n.Text      `json:"siteName"`
	DefaultLocale    string         `json:"defaultLocale"`
	SupportedLocales []string       `json:"supportedLocales"`
	ContactEmail     string         `json:"contactEmail"`
	Currency         string         `json:"currency"`
	Metadata         map[string]any `json:"metadata"`
}

func (in SettingsInput) settings() (*models.Settings, error) {
	v := make(validation.Violations)
	if in.SiteName.IsZero() {
		v.Add("siteName", validation.CodeRequired)
	}

	supported := make([]string, 0, len(in.SupportedLocales))
	for _, l := range in.SupportedLocales {
		if n := i18n.Normalize(l); n != "" && !slices.Contains(supported, n) {
			supported = append(supported, n)
		}
	}
	if len(supported) == 0 {
		v.Add("supportedLocales", validation.CodeRequired)
	}
	defaultLocale := i18n.Normalize(in.DefaultLocale)
	validation.Required("defaultLocale", defaultLocale, v)
	if defaultLocale != "" && len(supported) > 0 {
		validation.OneOf("defaultLocale", defaultLocale, supported, v)
	}

	if in.ContactEmail != "" {
		validation.Email("contactEmail", in.ContactEmail, v)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if len(currency) != 3 {
		v.Add("currency", validation.CodeInvalid)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	metadata := datatypes.JSONMap(in.Metadata)
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}
	return &models.Settings{
		SiteName:         in.SiteName,
		DefaultLocale:    defaultLocale,
		SupportedLocales: datatypes.JSONSlice[string](supported),
		ContactEmail:     strings.TrimSpace(in.ContactEmail),
		Currency:         currency,
		Metadata:         metadata,
	}, nil
}

// HandleUpdate replaces the settings.
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input SettingsInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	s, err := input.settings()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.SaveSettings(r.Context(), s); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("settings saved", "default_locale", s.DefaultLocale, "currency", s.Currency)
	httpx.OK(w, http.StatusOK, newAdminSettingsResponse(s, i18n.LangFromContext(r.Context())))
}

func (h *SettingsHandler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetPreferences(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, newPreferencesResponse(p))
}

type PreferencesInput struct {
	DefaultPageSize int    `json:"defaultPageSize"`
	DefaultSort     string `json:"defaultSort"`
	Locale          string `json:"locale"`
	Theme           string `json:"theme"`
}

func (in PreferencesInput) preferences() (*models.AdminPreferences, error) {
	v := make(validation.Violations)
	validation.RangeInt("defaultPageSize", in.DefaultPageSize, 1, catalog.MaxLimit, v)
	sort, err := catalog.CompileSort(in.DefaultSort)
	if err != nil || strings.TrimSpace(in.DefaultSort) == "" {
		v.Add("defaultSort", validation.CodeNotAllowed)
	}
	locale := i18n.Normalize(in.Locale)
	validation.Required("locale", locale, v)
	validation.OneOf("theme", in.Theme, models.Themes, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &models.AdminPreferences{
		DefaultPageSize: in.DefaultPageSize,
		DefaultSort:     sort.Token(),
		Locale:          locale,
		Theme:           in.Theme,
	}, nil
}

// HandleUpdatePreferences replaces the back-office preferences.
func (h *SettingsHandler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var input PreferencesInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := input.preferences()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.repo.SavePreferences(r.Context(), p); err != nil {
		httpx.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("admin preferences saved", "page_size", p.DefaultPageSize, "sort", p.DefaultSort)
	httpx.OK(w, http.StatusOK, newPreferencesResponse(p))
}
