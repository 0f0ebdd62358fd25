package validation

import (
	"errors"
	"net/http"
)

// Domain errors for validation operations.
var (
	ErrInvalidInput = errors.New("invalid validation input")
	ErrNotFound     = errors.New("flagged item not found")
	ErrResolved     = errors.New("flagged item already resolved")
)

// MapHTTPStatus maps validation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrResolved) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
