package compiler

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCacheConsistency indicates a cached validator no longer matches the
// rule requesting it. Fatal: the caller must abort rather than fall back
// to stale compiled code.
var ErrCacheConsistency = errors.New("validator cache consistency violation")

// CompilationError reports a rule whose condition failed the grammar.
// Scoped to the one rule; batch compilation continues for siblings.
type CompilationError struct {
	RuleID   string
	RuleName string
	Fragment string
	Reason   string
}

func (e *CompilationError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("rule %s: compile condition: %s at %q", e.RuleName, e.Reason, e.Fragment)
	}
	return fmt.Sprintf("rule %s: compile condition: %s", e.RuleName, e.Reason)
}

// MapHTTPStatus maps compiler errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var ce *CompilationError
	if errors.As(err, &ce) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrCacheConsistency) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
