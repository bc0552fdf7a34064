package ports

import (
	"context"

	"github.com/aretw0/rulebook/pkg/domain"
)

// Evaluator is the engine surface used by transport adapters (HTTP, MCP).
// Implementations must be safe for concurrent use.
type Evaluator interface {
	// Run evaluates every rule of the book, in order, against facts.
	Run(ctx context.Context, book domain.RuleBook, facts domain.Facts) (*domain.Report, error)

	// Check evaluates a single raw condition encoding.
	Check(cond any, facts domain.Facts) (bool, error)

	// Explain evaluates a single raw condition encoding and returns the trace.
	Explain(cond any, facts domain.Facts) (*domain.Trace, error)
}
