package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Pagination parameters and bounds.
const (
	ParamPage    = "page"
	ParamLimit   = "limit"
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a coerced page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// Page describes the slice of a result set to return.
type Page struct {
	Page       int
	Limit      int
	Offset     int
	Take       int
	TotalPages int
}

// NewPageRequest coerces page and limit: page below 1 becomes 1, limit
// below 1 becomes defaultLimit (DefaultLimit when that is not positive) and
// limit above MaxLimit is capped. Page is capped so its offset fits in an int.
func NewPageRequest(page, limit, defaultLimit int) PageRequest {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Limit: limit}
}

// ParsePage reads page and limit from params. Non-numeric values are
// coerced like out-of-range ones.
func ParsePage(params url.Values, defaultLimit int) PageRequest {
	page, _ := strconv.Atoi(strings.TrimSpace(params.Get(ParamPage)))
	limit, _ := strconv.Atoi(strings.TrimSpace(params.Get(ParamLimit)))
	return NewPageRequest(page, limit, defaultLimit)
}

// Paginate converts page and limit into an offset/take window over total
// items. It never fails.
func Paginate(page, limit, total int) Page {
	req := NewPageRequest(page, limit, DefaultLimit)
	return req.Window(total)
}

// Window computes the page window of r over total items.
func (r PageRequest) Window(total int) Page {
	r = NewPageRequest(r.Page, r.Limit, DefaultLimit)
	totalPages := 0
	if total > 0 {
		totalPages = (total + r.Limit - 1) / r.Limit
	}
	return Page{
		Page:       r.Page,
		Limit:      r.Limit,
		Offset:     (r.Page - 1) * r.Limit,
		Take:       r.Limit,
		TotalPages: totalPages,
	}
}
