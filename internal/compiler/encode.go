package compiler

import "github.com/aretw0/rulebook/pkg/domain"

// EncodeNode converts a condition tree back into its canonical raw encoding.
// Any and All are always encoded with a list value.
func EncodeNode(n domain.Node) any {
	switch v := n.(type) {
	case domain.Leaf:
		return v.ID
	case domain.Val:
		return map[string]any{domain.KeyVal: v.ID}
	case domain.Any:
		return map[string]any{domain.KeyAny: encodeChildren(v.Children)}
	case domain.All:
		return map[string]any{domain.KeyAll: encodeChildren(v.Children)}
	default:
		return nil
	}
}

func encodeChildren(children []domain.Node) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = EncodeNode(c)
	}
	return out
}
