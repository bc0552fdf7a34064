package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/rulebook/pkg/adapters/redis"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
	contract "github.com/aretw0/rulebook/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.FactStore = (*redis.Store)(nil)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	contract.FactStoreContractTest(t, redis.NewFromClient(client))
}

func TestRedisStore_KeyAndPrefix(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, redis.WithPrefix("app:"), redis.WithKey("tenant-1"))
	assert.Equal(t, "app:tenant-1", store.Key())

	require.NoError(t, store.Replace(ctx, domain.NewFactSet("a", "b")))

	members, err := mr.Members("app:tenant-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	other := redis.NewFromClient(client, redis.WithPrefix("app:"), redis.WithKey("tenant-2"))
	facts, err := other.LoadFacts(ctx)
	require.NoError(t, err)
	assert.Zero(t, facts.Len(), "a missing key is an empty fact set")
}

func TestRedisStore_ReadsExistingSet(t *testing.T) {
	mr, client := setup(t)

	_, err := mr.SetAdd("rulebook:facts:default", "x", "y")
	require.NoError(t, err)

	facts, err := redis.NewFromClient(client).LoadFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, facts.Slice())
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.LoadFacts(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Replace(context.Background(), domain.NewFactSet("a")))
}

func TestRedisStore_New(t *testing.T) {
	mr, _ := setup(t)
	store := redis.New(mr.Addr(), "", 0, redis.WithKey("k"))
	defer store.Close()

	require.NoError(t, store.Replace(context.Background(), domain.NewFactSet("a")))
	assert.True(t, mr.Exists("rulebook:facts:k"))
}
