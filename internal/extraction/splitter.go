package extraction

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

var passageSeparators = []string{"\n\n", "\n", " ", ""}

// segment splits document text into overlapping passages sized for the
// completion context window. At most max passages are returned, taken
// from the front of the document.
func segment(text string, cfg *Config) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.ChunkSize),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		textsplitter.WithSeparators(passageSeparators),
	)

	passages, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("segment document text: %w", err)
	}

	if len(passages) > cfg.MaxPassages {
		passages = passages[:cfg.MaxPassages]
	}
	return passages, nil
}

// composePrompt assembles the user message from the analyst query and the
// selected passages.
func composePrompt(query string, passages []string) string {
	var b strings.Builder

	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nDocument passages:\n")

	for i, passage := range passages {
		fmt.Fprintf(&b, "\n--- passage %d ---\n%s\n", i+1, passage)
	}
	return b.String()
}
