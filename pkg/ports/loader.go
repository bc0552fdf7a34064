package ports

import (
	"context"

	"github.com/aretw0/rulebook/pkg/domain"
)

// RuleLoader defines how the engine retrieves the rules to evaluate.
// Entries are returned undecoded; structural validation happens per rule at
// evaluation time.
type RuleLoader interface {
	// LoadRules returns the rule book in evaluation order.
	// A document that cannot be parsed, or that lacks the rules list, yields an
	// error wrapping domain.ErrMalformedDocument.
	LoadRules(ctx context.Context) (domain.RuleBook, error)
}

// FactLoader defines how the engine retrieves the fact set for a pass.
type FactLoader interface {
	// LoadFacts returns the current fact set.
	// A document that cannot be parsed, lacks the vals list, or holds non-string
	// values yields an error wrapping domain.ErrMalformedDocument.
	LoadFacts(ctx context.Context) (domain.FactSet, error)
}
