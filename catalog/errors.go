package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lacantine/menu-catalog/validation"
)

// ValidationError reports malformed or out-of-range catalog query input.
// Fields maps each offending parameter to a violation code.
type ValidationError struct {
	Fields validation.Violations
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("invalid catalog query (%s)", strings.Join(parts, ", "))
}

// Details returns the per-field violations for error responses.
func (e *ValidationError) Details() any { return e.Fields }

func newValidationError(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}
