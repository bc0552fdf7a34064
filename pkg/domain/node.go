package domain

// Node is a logical condition expression.
// The set of implementations is closed: Leaf, Any, All and Val.
// Nodes are built once per pass by the compiler and never mutated afterwards.
type Node interface {
	node()
}

// Leaf is a bare fact identifier. It is true when the identifier is a known fact.
type Leaf struct {
	ID string
}

// Val is the keyed form of a Leaf ({"val": "id"}). It has the same truth value.
type Val struct {
	ID string
}

// Any is a disjunction. An empty Any is false.
type Any struct {
	Children []Node
}

// All is a conjunction. An empty All is true.
type All struct {
	Children []Node
}

func (Leaf) node() {}
func (Val) node()  {}
func (Any) node()  {}
func (All) node()  {}

// Kind returns the encoding key for keyed nodes, and "leaf" for a Leaf.
func Kind(n Node) string {
	switch n.(type) {
	case Leaf:
		return "leaf"
	case Val:
		return KeyVal
	case Any:
		return KeyAny
	case All:
		return KeyAll
	default:
		return "unknown"
	}
}
