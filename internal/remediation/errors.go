package remediation

import (
	"errors"
	"net/http"
)

// Domain errors for remediation operations.
var (
	ErrInvalidInput = errors.New("invalid remediation input")
	ErrTimeout      = errors.New("remediation timed out")
	ErrUnavailable  = errors.New("remediation capability unavailable")
)

// MapHTTPStatus maps remediation errors to HTTP status codes.
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
