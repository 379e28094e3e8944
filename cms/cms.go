package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lacantine/menu-catalog/i18n"
)

// ErrNotFound is returned when the CMS has no document for a slug.
var ErrNotFound = errors.New("cms document not found")

// HomeSlug is the slug of the landing page document.
const HomeSlug = "home"

// Document is a localized content page managed in the CMS.
type Document struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     i18n.Text `json:"title"`
	Summary   i18n.Text `json:"summary"`
	Sections  []Section `json:"sections"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Section is a block of a Document. ProductIDs reference catalog products
// highlighted by the block.
type Section struct {
	Key        string    `json:"key"`
	Heading    i18n.Text `json:"heading"`
	Body       i18n.Text `json:"body"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	ProductIDs []string  `json:"productIds,omitempty"`
}

// Source provides content documents.
type Source interface {
	Document(ctx context.Context, slug string) (*Document, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	Token   string
	Dataset string
	Timeout time.Duration
}

// Client reads published documents from the CMS delivery API:
// GET {BaseURL}/v1/{Dataset}/documents/{slug}.
type Client struct {
	baseURL string
	token   string
	dataset string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = "production"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		dataset: dataset,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Document(ctx context.Context, slug string) (*Document, error) {
	endpoint := fmt.Sprintf("%s/v1/%s/documents/%s", c.baseURL, url.PathEscape(c.dataset), url.PathEscape(slug))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: fetch %q: %w", slug, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cms: fetch %q: status %d: %s", slug, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Document *Document `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cms: decode %q: %w", slug, err)
	}
	if payload.Document == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return payload.Document, nil
}

// Static serves documents held in memory. It stands in for the CMS when
// none is configured.
type Static struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewStatic(docs ...Document) *Static {
	s := &Static{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		s.docs[d.Slug] = d
	}
	return s
}

// Put adds or replaces a document.
func (s *Static) Put(d Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.Slug] = d
}

func (s *Static) Document(_ context.Context, slug string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return &d, nil
}

// DefaultHome is the landing page served without a CMS.
func DefaultHome() Document {
	return Document{
		ID:   "home",
		Slug: HomeSlug,
		Title: i18n.Localized(
			i18n.Entry{Locale: "fr", Value: "Bienvenue à La Cantine"},
			i18n.Entry{Locale: "en", Value: "Welcome to La Cantine"},
		),
		Sections: []Section{
			{
				Key: "hero",
				Heading: i18n.Localized(
					i18n.Entry{Locale: "fr", Value: "Cuisine maison, produits frais"},
					i18n.Entry{Locale: "en", Value: "Home cooking, fresh produce"},
				),
			},
		},
	}
}
