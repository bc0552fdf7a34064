package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/rulebook"
	"github.com/aretw0/rulebook/pkg/adapters/file"
	loamadapter "github.com/aretw0/rulebook/pkg/adapters/loam"
	redisadapter "github.com/aretw0/rulebook/pkg/adapters/redis"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
)

// SourceOptions locates the rule book and the fact set.
type SourceOptions struct {
	Rules string
	Facts string
	Redis RedisOptions
}

// RedisOptions selects a Redis-backed fact set. An empty Addr means file facts.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Prefix   string
}

// EngineOptions tunes rule evaluation.
type EngineOptions struct {
	MaxDepth        int
	ContinueOnError bool
}

// createEngine builds the facade with the CLI's logger and hooks.
func createEngine(opts EngineOptions, logger *slog.Logger, hooks ...domain.LifecycleHooks) *rulebook.Engine {
	engineOpts := []rulebook.Option{
		rulebook.WithLogger(logger),
		rulebook.WithContinueOnError(opts.ContinueOnError),
	}
	if opts.MaxDepth > 0 {
		engineOpts = append(engineOpts, rulebook.WithMaxDepth(opts.MaxDepth))
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, rulebook.WithLifecycleHooks(h))
	}
	return rulebook.New(engineOpts...)
}

// newRuleLoader reads a single rules document, or a loam directory of
// one-rule documents when path is a directory.
func newRuleLoader(path string) (ports.RuleLoader, error) {
	if path == "" {
		path = domain.DefaultRulesFile
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		loader, err := loamadapter.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open rule directory: %w", err)
		}
		return loader, nil
	}
	return file.NewRuleLoader(path), nil
}

// newFactStore returns the Redis store when an address is configured and the
// file store otherwise. The returned closer releases connections.
func newFactStore(opts SourceOptions) (ports.FactStore, string, func() error) {
	if opts.Redis.Addr != "" {
		var redisOpts []redisadapter.Option
		if opts.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redisadapter.WithPrefix(opts.Redis.Prefix))
		}
		if opts.Redis.Key != "" {
			redisOpts = append(redisOpts, redisadapter.WithKey(opts.Redis.Key))
		}
		store := redisadapter.New(opts.Redis.Addr, opts.Redis.Password, opts.Redis.DB, redisOpts...)
		return store, "redis://" + opts.Redis.Addr + "/" + store.Key(), store.Close
	}

	store := file.NewFactStore(opts.Facts)
	return store, store.Path, func() error { return nil }
}

func sourceName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

// progressRules prints "Reading <name>" and "Done" around a rule load.
type progressRules struct {
	ports.RuleLoader
	name string
	out  io.Writer
}

func (p progressRules) LoadRules(ctx context.Context) (domain.RuleBook, error) {
	fmt.Fprintf(p.out, "Reading %s\n", p.name)
	book, err := p.RuleLoader.LoadRules(ctx)
	if err == nil {
		fmt.Fprintln(p.out, "Done")
	}
	return book, err
}

// progressFacts prints "Reading <name>" and "Done" around a fact load.
type progressFacts struct {
	ports.FactLoader
	name string
	out  io.Writer
}

func (p progressFacts) LoadFacts(ctx context.Context) (domain.FactSet, error) {
	fmt.Fprintf(p.out, "Reading %s\n", p.name)
	facts, err := p.FactLoader.LoadFacts(ctx)
	if err == nil {
		fmt.Fprintln(p.out, "Done")
	}
	return facts, err
}
