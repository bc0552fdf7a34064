package rulebook

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/internal/runtime"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
)

// Engine is the high-level entry point for the rulebook library.
// It wraps the internal parser and runner and provides a simplified API for consumers.
// An Engine keeps no state between passes and is safe for concurrent use.
type Engine struct {
	parser          *compiler.Parser
	runner          *runtime.Runner
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	maxDepth        int
	continueOnError bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
// Calling it more than once chains the hooks in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxDepth bounds the nesting depth of condition trees.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithContinueOnError records malformed rules on their outcome and keeps
// evaluating, instead of aborting the pass on the first one.
func WithContinueOnError(enabled bool) Option {
	return func(e *Engine) {
		e.continueOnError = enabled
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.parser = compiler.NewParser(compiler.WithMaxDepth(eng.maxDepth))
	eng.runner = runtime.NewRunner(
		runtime.WithParser(eng.parser),
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithContinueOnError(eng.continueOnError),
	)
	return eng
}

// Run evaluates every rule of the book, in order, against facts.
// See runtime.Runner.Run for the error policy.
func (e *Engine) Run(ctx context.Context, book domain.RuleBook, facts domain.Facts) (*domain.Report, error) {
	return e.runner.Run(ctx, book, facts)
}

// Check parses a raw condition encoding and evaluates it against facts.
func (e *Engine) Check(cond any, facts domain.Facts) (bool, error) {
	n, err := e.parser.ParseNode(cond)
	if err != nil {
		return false, err
	}
	return runtime.Evaluate(n, orEmpty(facts)), nil
}

// Explain parses a raw condition encoding and returns its evaluation trace.
func (e *Engine) Explain(cond any, facts domain.Facts) (*domain.Trace, error) {
	n, err := e.parser.ParseNode(cond)
	if err != nil {
		return nil, err
	}
	t := runtime.Trace(n, orEmpty(facts))
	return &t, nil
}

// Validate decodes every rule of the book without evaluating anything.
// All structural problems are reported at once in a *domain.AggregateError.
func (e *Engine) Validate(book domain.RuleBook) error {
	_, err := e.parser.ParseBook(book)
	return err
}

// Compile decodes every rule of the book. It is the non-evaluating counterpart
// of Run, used by tooling that needs the condition trees (graph export).
func (e *Engine) Compile(book domain.RuleBook) ([]*domain.Rule, error) {
	return e.parser.ParseBook(book)
}

// RunSources loads the facts, then the rules, then runs the pass.
// A load failure aborts before any rule is evaluated and returns a nil report.
func (e *Engine) RunSources(ctx context.Context, rules ports.RuleLoader, facts ports.FactLoader) (*domain.Report, error) {
	factSet, err := facts.LoadFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}
	e.logger.Debug("Facts loaded", "count", factSet.Len())

	book, err := rules.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	e.logger.Debug("Rules loaded", "source", book.Source, "count", book.Len())

	return e.Run(ctx, book, factSet)
}

func orEmpty(facts domain.Facts) domain.Facts {
	if facts == nil {
		return domain.NewFactSet()
	}
	return facts
}
