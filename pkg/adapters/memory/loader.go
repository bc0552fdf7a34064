package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
)

// RuleLoader implements ports.RuleLoader over a rule book held in memory.
type RuleLoader struct {
	book domain.RuleBook
}

// NewRuleLoader creates a loader returning entries under the given source name.
func NewRuleLoader(source string, entries ...any) *RuleLoader {
	return &RuleLoader{book: domain.RuleBook{Source: source, Entries: entries}}
}

// NewRuleLoaderFromJSON parses a rules document ({"rules": [...]}) eagerly.
// This handles decoding automatically, improving DX for tests.
func NewRuleLoaderFromJSON(source string, data []byte) (*RuleLoader, error) {
	doc, err := compiler.DecodeDocument(data, compiler.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	book, err := compiler.RuleBookFromDocument(source, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &RuleLoader{book: book}, nil
}

// LoadRules returns a copy of the held rule book.
func (l *RuleLoader) LoadRules(ctx context.Context) (domain.RuleBook, error) {
	entries := make([]any, len(l.book.Entries))
	copy(entries, l.book.Entries)
	return domain.RuleBook{Source: l.book.Source, Entries: entries}, nil
}
