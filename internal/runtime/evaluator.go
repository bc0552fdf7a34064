package runtime

import (
	"fmt"

	"github.com/aretw0/rulebook/pkg/domain"
)

// Evaluate reports whether the condition tree holds against the facts.
//
// Conjunctions and disjunctions are evaluated left to right and stop at the
// first child that decides the result; the remaining children are never
// visited. Evaluate is pure: it does not mutate the tree or the facts and may be
// called concurrently.
func Evaluate(n domain.Node, facts domain.Facts) bool {
	switch v := n.(type) {
	case domain.Leaf:
		return facts.Has(v.ID)
	case domain.Val:
		return facts.Has(v.ID)
	case domain.All:
		for _, c := range v.Children {
			if !Evaluate(c, facts) {
				return false
			}
		}
		return true
	case domain.Any:
		for _, c := range v.Children {
			if Evaluate(c, facts) {
				return true
			}
		}
		return false
	default:
		// Unreachable for trees built by the compiler.
		panic(fmt.Sprintf("runtime: unknown node type %T", n))
	}
}

// Trace evaluates the tree like Evaluate and records the result of every node.
// Children skipped by short-circuiting are included with Skipped set and are not
// looked up in the facts.
func Trace(n domain.Node, facts domain.Facts) domain.Trace {
	switch v := n.(type) {
	case domain.Leaf:
		return domain.Trace{Kind: domain.Kind(v), ID: v.ID, Result: facts.Has(v.ID)}
	case domain.Val:
		return domain.Trace{Kind: domain.Kind(v), ID: v.ID, Result: facts.Has(v.ID)}
	case domain.All:
		return traceChildren(domain.KeyAll, v.Children, facts, true)
	case domain.Any:
		return traceChildren(domain.KeyAny, v.Children, facts, false)
	default:
		panic(fmt.Sprintf("runtime: unknown node type %T", n))
	}
}

// traceChildren handles both keyed forms. identity is the result of an empty
// node (true for all, false for any); the first child whose result differs from
// it decides the node.
func traceChildren(kind string, children []domain.Node, facts domain.Facts, identity bool) domain.Trace {
	t := domain.Trace{Kind: kind, Result: identity}
	decided := false
	for _, c := range children {
		if decided {
			t.Children = append(t.Children, skipped(c))
			continue
		}
		ct := Trace(c, facts)
		t.Children = append(t.Children, ct)
		if ct.Result != identity {
			t.Result = ct.Result
			decided = true
		}
	}
	return t
}

func skipped(n domain.Node) domain.Trace {
	t := domain.Trace{Kind: domain.Kind(n), Skipped: true}
	switch v := n.(type) {
	case domain.Leaf:
		t.ID = v.ID
	case domain.Val:
		t.ID = v.ID
	case domain.All:
		for _, c := range v.Children {
			t.Children = append(t.Children, skipped(c))
		}
	case domain.Any:
		for _, c := range v.Children {
			t.Children = append(t.Children, skipped(c))
		}
	}
	return t
}
