package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/rulebook/pkg/domain"
)

// Loader adapts a Loam repository to the ports.RuleLoader interface.
// Every document is one rule: its front matter (or JSON/YAML body) carries the
// cond and payload keys. Rules are evaluated in document ID order, so prefixes
// like 010-, 020- control precedence.
type Loader struct {
	Repo   core.Repository
	Source string
}

// New creates a new Loam adapter over an initialized repository.
func New(repo core.Repository, source string) *Loader {
	return &Loader{Repo: repo, Source: source}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam repository at %s: %w", absPath, err)
	}
	return New(repo, dir), nil
}

// LoadRules lists the repository and returns one entry per document.
// Entries are the raw metadata maps; a document without cond or payload is
// reported at its turn by the runner.
func (l *Loader) LoadRules(ctx context.Context) (domain.RuleBook, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return domain.RuleBook{}, fmt.Errorf("loam list failed: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})

	seen := make(map[string]string, len(docs))
	entries := make([]any, 0, len(docs))
	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if existing, ok := seen[id]; ok {
			return domain.RuleBook{}, fmt.Errorf("%w: rule %q is defined in both %q and %q", domain.ErrMalformedDocument, id, existing, doc.ID)
		}
		seen[id] = doc.ID
		entries = append(entries, map[string]any(doc.Metadata))
	}

	return domain.RuleBook{Source: l.Source, Entries: entries}, nil
}

// IDs returns the rule document IDs in evaluation order, without extensions.
func (l *Loader) IDs(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, trimExtension(doc.ID))
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}
