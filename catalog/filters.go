package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lacantine/menu-catalog/validation"
)

// Query parameter names understood by NormalizeFilters.
const (
	ParamCategoryID  = "categoryId"
	ParamSearch      = "search"
	ParamIsAvailable = "isAvailable"
	ParamPriceMin    = "priceMin"
	ParamPriceMax    = "priceMax"
	ParamRatingMin   = "ratingMin"
	ParamIsFeatured  = "isFeatured"
	ParamIsPopular   = "isPopular"
	ParamIsTrending  = "isTrending"
)

// MaxRating is the upper bound of a product rating.
const MaxRating = 5.0

// Filters is a typed, validated set of product constraints. A nil field
// imposes no constraint.
type Filters struct {
	CategoryID  *string
	Search      *string
	IsAvailable *bool
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	RatingMin   *float64
	IsFeatured  *bool
	IsPopular   *bool
	IsTrending  *bool
}

// Bool returns a pointer to b, for building Filters in code.
func Bool(b bool) *bool { return &b }

// NormalizeFilters parses raw query parameters into Filters. Every invalid
// parameter is reported in the returned *ValidationError.
func NormalizeFilters(params url.Values) (Filters, error) {
	var f Filters
	v := make(validation.Violations)

	if s := strings.TrimSpace(params.Get(ParamCategoryID)); s != "" {
		f.CategoryID = &s
	}
	if s := strings.TrimSpace(params.Get(ParamSearch)); s != "" {
		f.Search = &s
	}

	f.IsAvailable = parseBool(params, ParamIsAvailable, v)
	f.IsFeatured = parseBool(params, ParamIsFeatured, v)
	f.IsPopular = parseBool(params, ParamIsPopular, v)
	f.IsTrending = parseBool(params, ParamIsTrending, v)
	f.PriceMin = parsePrice(params, ParamPriceMin, v)
	f.PriceMax = parsePrice(params, ParamPriceMax, v)

	if s := strings.TrimSpace(params.Get(ParamRatingMin)); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			v.Add(ParamRatingMin, validation.CodeInvalid)
		} else {
			f.RatingMin = &r
		}
	}

	f.check(v)
	if err := newValidationError(v); err != nil {
		return Filters{}, err
	}
	return f, nil
}

// Validate checks the range invariants of f. The query engine calls it so
// hand-built filters cannot bypass the normalizer's rules.
func (f Filters) Validate() error {
	v := make(validation.Violations)
	f.check(v)
	return newValidationError(v)
}

func (f Filters) check(v validation.Violations) {
	if f.PriceMin != nil {
		validation.NonNegativeDecimal(ParamPriceMin, *f.PriceMin, v)
	}
	if f.PriceMax != nil {
		validation.NonNegativeDecimal(ParamPriceMax, *f.PriceMax, v)
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		v.Add(ParamPriceMin, validation.CodeGreaterThanMax)
	}
	if f.RatingMin != nil {
		validation.RangeFloat(ParamRatingMin, *f.RatingMin, 0, MaxRating, v)
	}
}

// Match reports whether it satisfies every present filter.
func (f Filters) Match(it Item) bool {
	if f.CategoryID != nil && it.CategoryID != *f.CategoryID {
		return false
	}
	if f.Search != nil && !containsFold(it.Name, *f.Search) && !containsFold(it.Description, *f.Search) {
		return false
	}
	if f.IsAvailable != nil && it.IsAvailable != *f.IsAvailable {
		return false
	}
	if f.PriceMin != nil && it.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && it.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.RatingMin != nil && it.rating() < *f.RatingMin {
		return false
	}
	if f.IsFeatured != nil && it.IsFeatured != *f.IsFeatured {
		return false
	}
	if f.IsPopular != nil && it.IsPopular != *f.IsPopular {
		return false
	}
	if f.IsTrending != nil && it.IsTrending != *f.IsTrending {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func parseBool(params url.Values, key string, v validation.Violations) *bool {
	s := strings.TrimSpace(params.Get(key))
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		v.Add(key, validation.CodeInvalid)
		return nil
	}
	return &b
}

func parsePrice(params url.Values, key string, v validation.Violations) *decimal.Decimal {
	s := strings.TrimSpace(params.Get(key))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		v.Add(key, validation.CodeInvalid)
		return nil
	}
	return &d
}
