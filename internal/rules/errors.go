package rules

import (
	"errors"
	"net/http"
)

// Domain errors for rule operations.
var (
	ErrNotFound         = errors.New("rule not found")
	ErrDuplicate        = errors.New("rule already exists")
	ErrInvalidID        = errors.New("invalid rule id")
	ErrConditionTooLong = errors.New("condition exceeds length cap")
)

// MapHTTPStatus maps rule domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) || errors.Is(err, ErrConditionTooLong) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
