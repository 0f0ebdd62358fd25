package extraction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/capability"
	"github.com/wardenlabs/warden/internal/documents"
	"github.com/wardenlabs/warden/internal/rules"
)

// System defines the public contract for extraction operations.
type System interface {
	Handler() *Handler

	// Extract resolves the document, runs rule extraction against its
	// text, and persists the resulting rules. Stored reports how many
	// rules were new; re-extraction of unchanged rules is a no-op.
	Extract(ctx context.Context, documentID uuid.UUID, query string) (*ExtractOutput, error)
}

// ExtractOutput is the result of a persisted extraction run.
type ExtractOutput struct {
	Rules   []rules.Rule `json:"rules"`
	Dropped int          `json:"dropped"`
	Stored  int          `json:"stored"`
}

type system struct {
	extractor *Extractor
	documents documents.System
	rules     rules.System
	logger    *slog.Logger
}

// New creates the extraction system over the document and rule domains.
func New(
	cap capability.System,
	docs documents.System,
	ruleStore rules.System,
	logger *slog.Logger,
	cfg *Config,
) System {
	logger = logger.With("system", "extraction")
	return &system{
		extractor: NewExtractor(cap, logger, cfg),
		documents: docs,
		rules:     ruleStore,
		logger:    logger,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Extract(ctx context.Context, documentID uuid.UUID, query string) (*ExtractOutput, error) {
	doc, err := s.documents.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Text == "" {
		return nil, fmt.Errorf("%w: document %s", ErrInvalidInput, documents.ErrNoText)
	}

	result, err := s.extractor.Extract(ctx, doc.ID, doc.Text, query)
	if err != nil {
		return nil, err
	}

	stored, err := s.rules.Save(ctx, result.Rules)
	if err != nil {
		return nil, fmt.Errorf("persist extracted rules: %w", err)
	}

	return &ExtractOutput{
		Rules:   result.Rules,
		Dropped: result.Dropped,
		Stored:  stored,
	}, nil
}
