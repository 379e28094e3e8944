package catalog

import (
	"errors"
	"maps"
	"net/url"

	"github.com/lacantine/menu-catalog/validation"
)

// Request is a parsed catalog query string.
type Request struct {
	Filters Filters
	Sort    Sort
	Page    PageRequest
}

// ParseRequest reads filters, sort and pagination from params. Violations
// of filters and sort are reported together in one *ValidationError.
func ParseRequest(params url.Values, defaultLimit int) (Request, error) {
	var req Request
	v := make(validation.Violations)

	f, err := NormalizeFilters(params)
	if err := collect(err, v); err != nil {
		return Request{}, err
	}
	req.Filters = f

	s, err := SortFromParams(params.Get(ParamSort), params.Get(ParamSortBy), params.Get(ParamSortOrder))
	if err := collect(err, v); err != nil {
		return Request{}, err
	}
	req.Sort = s

	req.Page = ParsePage(params, defaultLimit)

	if err := newValidationError(v); err != nil {
		return Request{}, err
	}
	return req, nil
}

// collect merges the fields of a *ValidationError into v. Other errors are
// returned unchanged.
func collect(err error, v validation.Violations) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	maps.Copy(v, verr.Fields)
	return nil
}
