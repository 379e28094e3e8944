package catalog

import (
	"strings"

	"github.com/lacantine/menu-catalog/validation"
)

// Query parameter names for sorting.
const (
	ParamSort      = "sort"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
)

// SortField is an allow-listed sortable product attribute.
type SortField string

const (
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "updated_at"
	SortName       SortField = "name"
	SortPrice      SortField = "price"
	SortRating     SortField = "rating"
	SortPopularity SortField = "popularity"
)

// SortFields lists every sortable field.
var SortFields = []SortField{SortCreatedAt, SortUpdatedAt, SortName, SortPrice, SortRating, SortPopularity}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is a compiled sort instruction.
type Sort struct {
	Field     SortField
	Direction Direction
}

// DefaultSort is used when no sort is requested.
var DefaultSort = Sort{Field: SortCreatedAt, Direction: Desc}

// Token renders s back into its "<field>_<direction>" form.
func (s Sort) Token() string {
	return string(s.Field) + "_" + string(s.Direction)
}

// Validate checks s against the allow-list.
func (s Sort) Validate() error {
	v := make(validation.Violations)
	if !isSortField(s.Field) {
		v.Add(ParamSortBy, validation.CodeNotAllowed)
	}
	if s.Direction != Asc && s.Direction != Desc {
		v.Add(ParamSortOrder, validation.CodeNotAllowed)
	}
	return newValidationError(v)
}

// CompileSort parses a "<field>_<direction>" token. The direction is
// separated on the last underscore, so "created_at_desc" is created_at
// descending. An empty token yields DefaultSort.
func CompileSort(token string) (Sort, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return DefaultSort, nil
	}
	i := strings.LastIndexByte(token, '_')
	if i <= 0 || i == len(token)-1 {
		return Sort{}, &ValidationError{Fields: validation.Violations{ParamSort: validation.CodeInvalid}}
	}
	s := Sort{
		Field:     SortField(strings.ToLower(token[:i])),
		Direction: Direction(strings.ToLower(token[i+1:])),
	}
	if err := s.Validate(); err != nil {
		return Sort{}, err
	}
	return s, nil
}

// SortFromParams compiles the sort of a request. An explicit "sort" token
// wins; otherwise sortBy and sortOrder are joined into a token, with the
// order defaulting to desc, and compiled the same way.
func SortFromParams(token, sortBy, sortOrder string) (Sort, error) {
	if strings.TrimSpace(token) != "" {
		return CompileSort(token)
	}
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		if strings.TrimSpace(sortOrder) == "" {
			return DefaultSort, nil
		}
		sortBy = string(DefaultSort.Field)
	}
	sortOrder = strings.TrimSpace(sortOrder)
	if sortOrder == "" {
		sortOrder = string(Desc)
	}
	return CompileSort(sortBy + "_" + sortOrder)
}

func isSortField(f SortField) bool {
	for _, s := range SortFields {
		if s == f {
			return true
		}
	}
	return false
}
