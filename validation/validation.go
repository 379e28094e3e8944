package validation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Violation codes.
const (
	CodeRequired       = "required"
	CodeInvalid        = "invalid"
	CodeNegative       = "must_not_be_negative"
	CodeOutOfRange     = "out_of_range"
	CodeNotAllowed     = "not_allowed"
	CodeGreaterThanMax = "greater_than_max"
	CodeTooShort       = "too_short"
	CodeTaken          = "already_taken"
)

// Violations maps a field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, CodeNegative)
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if !(val >= minVal && val <= maxVal) {
		v.Add(field, CodeOutOfRange)
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, CodeOutOfRange)
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, CodeNotAllowed)
}

func Email(field, value string, v Violations) {
	at := strings.IndexByte(value, '@')
	if at < 1 || at == len(value)-1 || strings.ContainsAny(value, " \t") {
		v.Add(field, CodeInvalid)
	}
}

func MinLength(field, value string, n int, v Violations) {
	if len(value) < n {
		v.Add(field, CodeTooShort)
	}
}

// Error reports invalid request input field by field.
type Error struct {
	Fields Violations
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid input: " + strings.Join(keys, ", ")
}

// Details returns the per-field violations for error responses.
func (e *Error) Details() any { return e.Fields }

// Err returns v as an *Error, or nil when v is empty.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Fields: v}
}
