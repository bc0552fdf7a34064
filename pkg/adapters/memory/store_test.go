package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/rulebook/pkg/adapters/memory"
	"github.com/aretw0/rulebook/pkg/domain"
	contract "github.com/aretw0/rulebook/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
)

func TestFactStore_Contract(t *testing.T) {
	contract.FactStoreContractTest(t, memory.NewFactStore())
}

func TestFactStore_ConcurrentReplace(t *testing.T) {
	store := memory.NewFactStore("seed")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Replace(ctx, domain.NewFactSet("a", "b"))
		}()
		go func() {
			defer wg.Done()
			facts, err := store.LoadFacts(ctx)
			assert.NoError(t, err)
			// Either the seed or a full replacement, never a mix.
			if facts.Has("a") {
				assert.True(t, facts.Has("b"))
			} else {
				assert.True(t, facts.Has("seed"))
			}
		}()
	}
	wg.Wait()
}
