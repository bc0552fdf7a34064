package tests

import (
	"context"
	"testing"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FactStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.FactStore.
func FactStoreContractTest(t *testing.T, store ports.FactStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Replace_And_Load", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, domain.NewFactSet("a", "b")))

		facts, err := store.LoadFacts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, facts.Slice())
	})

	t.Run("Replace_Is_Wholesale", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, domain.NewFactSet("a", "b")))
		require.NoError(t, store.Replace(ctx, domain.NewFactSet("c")))

		facts, err := store.LoadFacts(ctx)
		require.NoError(t, err)
		assert.False(t, facts.Has("a"), "previous facts must not leak into the new set")
		assert.True(t, facts.Has("c"))
	})

	t.Run("Replace_With_Empty", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, domain.NewFactSet("a")))
		require.NoError(t, store.Replace(ctx, domain.NewFactSet()))

		facts, err := store.LoadFacts(ctx)
		require.NoError(t, err)
		assert.Zero(t, facts.Len())
	})

	t.Run("Identifiers_Are_Exact", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, domain.NewFactSet("Case", "with space", "")))

		facts, err := store.LoadFacts(ctx)
		require.NoError(t, err)
		assert.True(t, facts.Has("Case"))
		assert.False(t, facts.Has("case"))
		assert.True(t, facts.Has("with space"))
		assert.True(t, facts.Has(""))
	})
}

// RuleLoaderContractTest verifies that loader returns the expected entries, in order.
// want holds the expected raw entries after decoding.
func RuleLoaderContractTest(t *testing.T, loader ports.RuleLoader, want []any) {
	t.Helper()

	t.Run("LoadRules_Order", func(t *testing.T) {
		book, err := loader.LoadRules(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, book.Entries)
		assert.NotEmpty(t, book.Source)
	})

	t.Run("LoadRules_Repeatable", func(t *testing.T) {
		first, err := loader.LoadRules(context.Background())
		require.NoError(t, err)
		second, err := loader.LoadRules(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
