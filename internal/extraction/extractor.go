// Package extraction implements the rule extraction domain for Warden.
// It turns a source document plus a natural-language query into
// canonical validation rules via a language model capability.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/capability"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/formatting"
)

// candidate mirrors the JSON shape the capability is instructed to
// produce.
type candidate struct {
	RuleName        string `json:"rule_name"`
	RuleDescription string `json:"rule_description"`
	RuleCondition   string `json:"rule_condition"`
	ErrorMessage    string `json:"error_message"`
}

type candidatePayload struct {
	Rules []candidate `json:"rules"`
}

// Result carries the extracted rules plus the count of candidates
// dropped for failing the condition grammar. Dropped is diagnostic, not
// an error.
type Result struct {
	Rules   []rules.Rule `json:"rules"`
	Dropped int          `json:"dropped"`
}

// Extractor converts document text into validation rules. It holds no
// storage access; persistence is the caller's concern.
type Extractor struct {
	capability capability.System
	logger     *slog.Logger
	cfg        *Config
}

// NewExtractor creates an Extractor over the given capability.
func NewExtractor(cap capability.System, logger *slog.Logger, cfg *Config) *Extractor {
	return &Extractor{
		capability: cap,
		logger:     logger.With("system", "extraction"),
		cfg:        cfg,
	}
}

// Extract produces rules for a document's text and query. All-or-nothing:
// on any error no rules are returned. Candidates with unparsable
// conditions are dropped and counted, and duplicate (name, condition)
// pairs within the document collapse to one rule.
func (e *Extractor) Extract(
	ctx context.Context,
	sourceDocumentID uuid.UUID,
	text, query string,
) (*Result, error) {
	query = strings.TrimSpace(query)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document has no text", ErrInvalidInput)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is blank", ErrInvalidInput)
	}

	passages, err := segment(text, e.cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TimeoutDuration())
	defer cancel()

	response, err := e.capability.Complete(ctx, extractInstructions, composePrompt(query, passages))
	if err != nil {
		return nil, mapCapabilityError(err)
	}

	payload, err := formatting.ParseJSON[candidatePayload](response)
	if err != nil {
		return nil, fmt.Errorf("%w: unusable completion: %v", ErrUnavailable, err)
	}

	result := e.assemble(sourceDocumentID, payload.Rules)
	e.logger.Info(
		"rules extracted",
		"document_id", sourceDocumentID,
		"candidates", len(payload.Rules),
		"rules", len(result.Rules),
		"dropped", result.Dropped,
	)
	return result, nil
}

func (e *Extractor) assemble(sourceDocumentID uuid.UUID, candidates []candidate) *Result {
	result := &Result{Rules: []rules.Rule{}}
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		r, err := rules.NewRule(c.RuleName, c.RuleDescription, c.RuleCondition, c.ErrorMessage, sourceDocumentID)
		if err != nil {
			e.logger.Warn("candidate dropped", "name", c.RuleName, "error", err)
			result.Dropped++
			continue
		}

		key := r.Name + "\n" + r.Condition
		if seen[key] {
			continue
		}
		seen[key] = true

		result.Rules = append(result.Rules, r)
	}
	return result
}

func mapCapabilityError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
