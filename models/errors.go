package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every "record not found" error of this package.
var ErrNotFound = errors.New("not found")

var (
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrExtraNotFound      = fmt.Errorf("extra %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrRatingNotFound     = fmt.Errorf("rating %w", ErrNotFound)
)

// ConflictError reports a write refused because of the current state of
// the store, such as deleting a record that others still reference.
type ConflictError struct {
	Resource   string
	Reason     string
	Dependents int64
}

func (e *ConflictError) Error() string {
	if e.Dependents > 0 {
		return fmt.Sprintf("%s: %s (%d)", e.Resource, e.Reason, e.Dependents)
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

// Details describes the conflict for error responses.
func (e *ConflictError) Details() any {
	d := map[string]any{"resource": e.Resource, "reason": e.Reason}
	if e.Dependents > 0 {
		d["dependents"] = e.Dependents
	}
	return d
}

// IsConflict reports whether err is a *ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
