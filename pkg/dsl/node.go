package dsl

import (
	"fmt"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
)

// Leaf is a bare fact identifier.
func Leaf(id string) domain.Node {
	return domain.Leaf{ID: id}
}

// Val is the keyed form of a leaf ({"val": id}).
func Val(id string) domain.Node {
	return domain.Val{ID: id}
}

// All is true when every child holds. Children are domain.Node values or
// strings, which are shorthand for Leaf.
func All(children ...any) domain.Node {
	return domain.All{Children: nodes(children)}
}

// Any is true when at least one child holds. Children follow the same rules as All.
func Any(children ...any) domain.Node {
	return domain.Any{Children: nodes(children)}
}

// Encode returns the raw encoding of a node, as it would appear in a rules document.
func Encode(n domain.Node) any {
	return compiler.EncodeNode(n)
}

// Facts builds a fact set.
func Facts(ids ...string) domain.FactSet {
	return domain.NewFactSet(ids...)
}

// nodes panics on unsupported child types: a tree built in Go with the wrong
// types is a programming error.
func nodes(children []any) []domain.Node {
	out := make([]domain.Node, 0, len(children))
	for _, c := range children {
		switch v := c.(type) {
		case string:
			out = append(out, domain.Leaf{ID: v})
		case domain.Node:
			out = append(out, v)
		default:
			panic(fmt.Sprintf("dsl: unsupported child type %T", c))
		}
	}
	return out
}
