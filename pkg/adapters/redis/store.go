package redis

import (
	"context"
	"fmt"

	"github.com/aretw0/rulebook/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "rulebook:facts:"
	defaultKey    = "default"
)

// Store implements ports.FactStore using a Redis SET.
type Store struct {
	client *backend.Client
	prefix string
	key    string
}

type Option func(*Store)

// WithPrefix sets the key prefix for fact sets.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithKey selects which fact set the store reads and replaces.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		key:    defaultKey,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Key returns the full Redis key of the fact set.
func (s *Store) Key() string {
	return s.prefix + s.key
}

// LoadFacts reads the fact set with SMEMBERS. A missing key is an empty set.
func (s *Store) LoadFacts(ctx context.Context) (domain.FactSet, error) {
	members, err := s.client.SMembers(ctx, s.Key()).Result()
	if err != nil {
		return domain.FactSet{}, fmt.Errorf("failed to load facts from redis: %w", err)
	}
	return domain.NewFactSet(members...), nil
}

// Replace swaps the stored fact set inside a MULTI/EXEC transaction, so readers
// see either the old set or the new one.
func (s *Store) Replace(ctx context.Context, facts domain.FactSet) error {
	key := s.Key()
	ids := facts.Slice()

	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(ids) > 0 {
			members := make([]any, len(ids))
			for i, id := range ids {
				members[i] = id
			}
			pipe.SAdd(ctx, key, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace facts in redis: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
