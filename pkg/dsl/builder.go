package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/rulebook/pkg/adapters/memory"
	"github.com/aretw0/rulebook/pkg/domain"
)

// Builder manages the construction of a rule book.
// Rules keep the order in which they are added.
type Builder struct {
	source  string
	entries []any
}

// New creates a new rule book builder labelled with source.
func New(source string) *Builder {
	return &Builder{source: source}
}

// Rule appends a rule firing payload when cond holds.
func (b *Builder) Rule(cond domain.Node, payload any) *Builder {
	b.entries = append(b.entries, map[string]any{
		domain.KeyCond:    Encode(cond),
		domain.KeyPayload: payload,
	})
	return b
}

// Raw appends an entry as is, without validation. Useful to exercise the
// runner's handling of malformed rules.
func (b *Builder) Raw(entry any) *Builder {
	b.entries = append(b.entries, entry)
	return b
}

// Book returns the rule book built so far.
func (b *Builder) Book() domain.RuleBook {
	entries := make([]any, len(b.entries))
	copy(entries, b.entries)
	return domain.RuleBook{Source: b.source, Entries: entries}
}

// Build compiles the rule book into a memory loader.
func (b *Builder) Build() *memory.RuleLoader {
	book := b.Book()
	return memory.NewRuleLoader(book.Source, book.Entries...)
}

// JSON renders the rule book as a rules document ({"rules": [...]}).
func (b *Builder) JSON() ([]byte, error) {
	entries := b.entries
	if entries == nil {
		entries = []any{}
	}
	data, err := json.MarshalIndent(map[string]any{domain.KeyRules: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule book: %w", err)
	}
	return data, nil
}
