package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/internal/presentation/graph"
	"github.com/aretw0/rulebook/internal/presentation/report"
	"github.com/aretw0/rulebook/internal/validator"
	"github.com/aretw0/rulebook/pkg/domain"
)

// CheckOptions configures a one-off condition check.
type CheckOptions struct {
	SourceOptions
	EngineOptions
	// Vals, when set, replaces the fact source.
	Vals    []string
	Explain bool
	JSON    bool
	Log     LogOptions
}

// Check evaluates a single JSON-encoded condition and prints the result.
func Check(ctx context.Context, condition string, opts CheckOptions, out io.Writer) error {
	cond, err := compiler.DecodeJSON([]byte(condition))
	if err != nil {
		return fmt.Errorf("invalid condition: %w", err)
	}

	facts, err := loadFacts(ctx, opts.SourceOptions, opts.Vals)
	if err != nil {
		return err
	}

	engine := createEngine(opts.EngineOptions, createLogger(opts.Log))

	if !opts.Explain {
		ok, err := engine.Check(cond, facts)
		if err != nil {
			return err
		}
		if opts.JSON {
			return json.NewEncoder(out).Encode(map[string]bool{"result": ok})
		}
		_, err = fmt.Fprintln(out, ok)
		return err
	}

	trace, err := engine.Explain(cond, facts)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	}
	return report.WriteTrace(out, *trace)
}

// ValidateOptions configures rule book validation.
type ValidateOptions struct {
	Rules    string
	MaxDepth int
	Log      LogOptions
}

// ErrInvalidRules is returned by Validate when at least one rule is malformed.
var ErrInvalidRules = errors.New("rule book is invalid")

// Validate decodes every rule and lists all structural errors, preceded by
// lint warnings for the rules that did decode.
func Validate(ctx context.Context, opts ValidateOptions, out io.Writer) error {
	book, err := loadRules(ctx, opts.Rules)
	if err != nil {
		return err
	}

	engine := createEngine(EngineOptions{MaxDepth: opts.MaxDepth}, createLogger(opts.Log))
	rules, verr := engine.Compile(book)
	for _, w := range validator.Lint(rules) {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if verr == nil {
		fmt.Fprintf(out, "OK: %d rules in %s\n", book.Len(), book.Source)
		return nil
	}

	var agg *domain.AggregateError
	if errors.As(verr, &agg) {
		fmt.Fprintf(out, "%d of %d rules in %s are malformed:\n", len(agg.Errors), book.Len(), book.Source)
		for _, e := range agg.Errors {
			fmt.Fprintf(out, "  - %v\n", e)
		}
	} else {
		fmt.Fprintf(out, "  - %v\n", verr)
	}
	return ErrInvalidRules
}

// GraphOptions configures the Mermaid export.
type GraphOptions struct {
	SourceOptions
	MaxDepth int
	// Index selects one rule; negative exports every rule.
	Index int
	// Overlay colors the diagram with an evaluation against the fact source.
	Overlay bool
	Log     LogOptions
}

// Graph prints a Mermaid flowchart of the rule conditions.
func Graph(ctx context.Context, opts GraphOptions, out io.Writer) error {
	book, err := loadRules(ctx, opts.Rules)
	if err != nil {
		return err
	}

	engine := createEngine(EngineOptions{MaxDepth: opts.MaxDepth}, createLogger(opts.Log))
	rules, err := engine.Compile(book)
	if err != nil {
		return err
	}

	if opts.Index >= 0 {
		if opts.Index >= len(rules) {
			return fmt.Errorf("rule index %d out of range (book has %d rules)", opts.Index, len(rules))
		}
		rules = rules[opts.Index : opts.Index+1]
	}

	var traces map[int]domain.Trace
	if opts.Overlay {
		facts, err := loadFacts(ctx, opts.SourceOptions, nil)
		if err != nil {
			return err
		}
		traces = make(map[int]domain.Trace, len(rules))
		for _, r := range rules {
			t, err := engine.Explain(r.Source, facts)
			if err != nil {
				return err
			}
			traces[r.Index] = *t
		}
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(rules, traces))
	return err
}

// PushOptions configures publishing a fact file to Redis.
type PushOptions struct {
	Facts string
	Redis RedisOptions
}

// PushFacts replaces the Redis fact set with the contents of a fact file.
func PushFacts(ctx context.Context, opts PushOptions, out io.Writer) error {
	if opts.Redis.Addr == "" {
		return errors.New("a redis address is required")
	}

	src, _, _ := newFactStore(SourceOptions{Facts: opts.Facts})
	facts, err := src.LoadFacts(ctx)
	if err != nil {
		return err
	}

	dst, name, closeDst := newFactStore(SourceOptions{Redis: opts.Redis})
	defer closeDst()

	if err := dst.Replace(ctx, facts); err != nil {
		return fmt.Errorf("failed to publish facts: %w", err)
	}
	printSystemMessage(out, "Published %d facts to %s", facts.Len(), name)
	return nil
}

func loadRules(ctx context.Context, path string) (domain.RuleBook, error) {
	loader, err := newRuleLoader(path)
	if err != nil {
		return domain.RuleBook{}, err
	}
	return loader.LoadRules(ctx)
}

func loadFacts(ctx context.Context, opts SourceOptions, vals []string) (domain.FactSet, error) {
	if len(vals) > 0 {
		return domain.NewFactSet(splitVals(vals)...), nil
	}
	store, _, closeStore := newFactStore(opts)
	defer closeStore()
	return store.LoadFacts(ctx)
}

// splitVals accepts both repeated flags and comma-separated lists.
func splitVals(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
