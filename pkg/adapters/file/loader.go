package file

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
)

// RuleLoader implements ports.RuleLoader over a single rules document on disk.
// The format is picked from the file extension (.json, .yaml, .yml).
type RuleLoader struct {
	Path string
}

// NewRuleLoader creates a loader for path. An empty path means domain.DefaultRulesFile.
func NewRuleLoader(path string) *RuleLoader {
	if path == "" {
		path = domain.DefaultRulesFile
	}
	return &RuleLoader{Path: path}
}

// LoadRules reads and decodes the rules document.
func (l *RuleLoader) LoadRules(ctx context.Context) (domain.RuleBook, error) {
	doc, err := readDocument(l.Path)
	if err != nil {
		return domain.RuleBook{}, err
	}
	book, err := compiler.RuleBookFromDocument(l.Path, doc)
	if err != nil {
		return domain.RuleBook{}, fmt.Errorf("%s: %w", l.Path, err)
	}
	return book, nil
}

// FactStore implements ports.FactStore over a single facts document on disk.
type FactStore struct {
	Path string
}

// NewFactStore creates a store for path. An empty path means domain.DefaultFactsFile.
func NewFactStore(path string) *FactStore {
	if path == "" {
		path = domain.DefaultFactsFile
	}
	return &FactStore{Path: path}
}

// LoadFacts reads and decodes the facts document.
func (s *FactStore) LoadFacts(ctx context.Context) (domain.FactSet, error) {
	doc, err := readDocument(s.Path)
	if err != nil {
		return domain.FactSet{}, err
	}
	facts, err := compiler.FactSetFromDocument(doc)
	if err != nil {
		return domain.FactSet{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return facts, nil
}

// Replace writes facts as a new facts document, atomically.
// The document is always written as JSON, whatever the file extension.
func (s *FactStore) Replace(ctx context.Context, facts domain.FactSet) error {
	return writeJSONAtomic(s.Path, map[string][]string{domain.KeyVals: facts.Slice()})
}

func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := compiler.DecodeDocument(data, compiler.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
