package testutils

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// NewRuleRepo initializes a Loam repository in a temporary directory and
// returns its absolute path along with the repository.
func NewRuleRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return dir, repo
}

// RuleDoc renders a markdown rule document. cond and payload are YAML
// fragments written as-is; an empty payload leaves the key out.
func RuleDoc(cond, payload, body string) string {
	doc := "---\ncond: " + cond + "\n"
	if payload != "" {
		doc += "payload: " + payload + "\n"
	}
	return doc + "---\n" + body
}

// SeedRules saves one document per entry of docs, keyed by document ID.
// Documents are saved in ID order so failures are reproducible.
func SeedRules(t *testing.T, repo core.Repository, docs map[string]string) {
	t.Helper()

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ctx := context.Background()
	for _, id := range ids {
		err := repo.Save(ctx, core.Document{ID: id, Content: docs[id]})
		require.NoError(t, err, "Failed to seed rule %s", id)
	}
}
