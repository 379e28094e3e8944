package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is the immutable snapshot of one product the engine works on. Name
// and Description are already rendered for the caller's locale. Seq is the
// insertion order used to break sort ties; Ref carries the caller's source
// record through untouched.
type Item struct {
	ID          string
	Seq         int
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
	CategoryID  string
	Rating      *float64
	Popularity  int
	IsFeatured  bool
	IsPopular   bool
	IsTrending  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Ref         any
}

// A missing rating ranks and filters as 0.
func (it Item) rating() float64 {
	if it.Rating == nil {
		return 0
	}
	return *it.Rating
}

// Result is one page of a catalog query.
type Result struct {
	Items      []Item
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Query filters, sorts and paginates items, in that order. Total and
// TotalPages describe the filtered set, whatever the size of the returned
// page. A page past the end yields no items. The items slice is not
// modified.
func Query(items []Item, f Filters, s Sort, p PageRequest) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	matched := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			matched = append(matched, it)
		}
	}
	total := len(matched)

	slices.SortStableFunc(matched, s.compare)

	window := p.Window(total)
	res := Result{
		Items:      []Item{},
		Total:      total,
		Page:       window.Page,
		Limit:      window.Limit,
		TotalPages: window.TotalPages,
	}
	if window.Offset < 0 || window.Offset >= total {
		return res, nil
	}
	end := min(window.Offset+window.Take, total)
	res.Items = matched[window.Offset:end]
	return res, nil
}

func (s Sort) compare(a, b Item) int {
	c := s.compareField(a, b)
	if s.Direction == Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	if c = cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (s Sort) compareField(a, b Item) int {
	switch s.Field {
	case SortName:
		return compareText(a.Name, b.Name)
	case SortPrice:
		return a.Price.Cmp(b.Price)
	case SortRating:
		return cmp.Compare(a.rating(), b.rating())
	case SortPopularity:
		return cmp.Compare(a.Popularity, b.Popularity)
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// compareText orders case-insensitively, then byte-wise so that the order
// stays total.
func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
