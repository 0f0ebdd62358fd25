package extraction

import (
	"errors"
	"net/http"
)

// Domain errors for rule extraction.
var (
	ErrInvalidInput = errors.New("invalid extraction input")
	ErrTimeout      = errors.New("extraction timed out")
	ErrUnavailable  = errors.New("extraction capability unavailable")
)

// MapHTTPStatus maps extraction errors to HTTP status codes. Timeouts
// are retryable and report 504; an unreachable capability reports 503.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
