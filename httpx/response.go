package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/catalog"
	"github.com/lacantine/menu-catalog/internal/logging"
	"github.com/lacantine/menu-catalog/models"
	"github.com/lacantine/menu-catalog/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrInvalidJSON is returned by Decode for unreadable request bodies.
var ErrInvalidJSON = errors.New("invalid JSON body")

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// DataResponse is the success envelope of single-object endpoints.
type DataResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ListResponse is the success envelope of paginated endpoints.
type ListResponse[T any] struct {
	Success    bool `json:"success"`
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// OK writes data in the single-object envelope.
func OK[T any](w http.ResponseWriter, status int, data T) {
	JSON(w, status, DataResponse[T]{Success: true, Data: data})
}

// List writes one page of data in the list envelope.
func List[T any](w http.ResponseWriter, data []T, total, page, limit, totalPages int) {
	if data == nil {
		data = []T{}
	}
	JSON(w, http.StatusOK, ListResponse[T]{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

// All writes an unpaginated list in the list envelope as a single page.
func All[T any](w http.ResponseWriter, data []T) {
	totalPages := 0
	if len(data) > 0 {
		totalPages = 1
	}
	List(w, data, len(data), 1, len(data), totalPages)
}

// Error writes err with the status of its kind. Unexpected errors are
// logged and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, details := classify(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "error", err)
	}
	JSONError(w, status, msg, details)
}

// StatusOf returns the HTTP status Error would answer err with.
func StatusOf(err error) int {
	status, _, _ := classify(err)
	return status
}

func classify(err error) (int, string, any) {
	var (
		queryErr    *catalog.ValidationError
		inputErr    *validation.Error
		conflictErr *models.ConflictError
	)
	switch {
	case errors.As(err, &queryErr):
		return http.StatusBadRequest, "invalid query parameters", queryErr.Details()
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, "invalid input", inputErr.Details()
	case errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Error(), conflictErr.Details()
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", nil
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden", nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// PathID parses a positive numeric path value. A malformed id is reported
// as notFound since no record can carry it.
func PathID(r *http.Request, name string, notFound error) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}
