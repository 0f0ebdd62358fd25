// Package rules implements the rule domain for Warden. It provides the
// canonical Rule representation, identity hashing, and Postgres-backed
// storage with de-duplication on identity.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/condition"
)

// Length caps applied at creation time.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 500
	MaxConditionLen   = 500
	MaxErrorMessage   = 200
)

// Rule is a named data-quality constraint extracted from a source
// document. Rules are immutable once created; ID is a stable hash over
// name, canonical condition, and source document, so re-extraction of an
// identical rule resolves to the same identity.
type Rule struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Condition        string    `json:"condition"`
	ErrorMessage     string    `json:"error_message"`
	SourceDocumentID uuid.UUID `json:"source_document_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRule builds a Rule from extracted candidate fields. The condition is
// parsed and re-rendered so identity hashes over its canonical form, not
// over incidental whitespace or quoting. A canonical condition over the
// length cap is rejected rather than truncated: a chopped condition would
// no longer parse, and its identity would hash over corrupted text.
func NewRule(name, description, cond, errorMessage string, sourceDocumentID uuid.UUID) (Rule, error) {
	node, err := condition.Parse(cond)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}

	canonical := node.String()
	if len(canonical) > MaxConditionLen {
		return Rule{}, fmt.Errorf("rule %q: %w (%d bytes)", name, ErrConditionTooLong, len(canonical))
	}

	r := Rule{
		Name:             truncate(name, MaxNameLen),
		Description:      truncate(description, MaxDescriptionLen),
		Condition:        canonical,
		ErrorMessage:     truncate(errorMessage, MaxErrorMessage),
		SourceDocumentID: sourceDocumentID,
	}
	r.ID = Identity(r.Name, r.Condition, r.SourceDocumentID)
	return r, nil
}

// Identity computes the stable rule identity hash. Rules from different
// documents never share an identity even when textually identical.
func Identity(name, canonicalCondition string, sourceDocumentID uuid.UUID) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{'\n'})
	h.Write([]byte(canonicalCondition))
	h.Write([]byte{'\n'})
	h.Write([]byte(sourceDocumentID.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// Compile parses the stored condition back into its AST.
func (r Rule) Compile() (condition.Node, error) {
	return condition.Parse(r.Condition)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
