// Package validator reports rules that are well formed but almost certainly
// not what their author meant.
package validator

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
)

// Warning describes a suspicious spot in a decoded rule.
type Warning struct {
	Index   int    `json:"index"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("rule #%d at %s: %s", w.Index, w.Path, w.Message)
}

// Lint checks decoded rules for constant sub-conditions, repeated facts in
// the same list and conditions identical to an earlier rule's.
func Lint(rules []*domain.Rule) []Warning {
	var warnings []Warning
	seen := make(map[string]int, len(rules))

	for _, r := range rules {
		warnings = append(warnings, lintNode(r.Index, r.Condition, "$")...)

		key, err := json.Marshal(compiler.EncodeNode(r.Condition))
		if err != nil {
			continue
		}
		if first, dup := seen[string(key)]; dup {
			warnings = append(warnings, Warning{
				Index:   r.Index,
				Path:    "$",
				Message: fmt.Sprintf("same condition as rule #%d", first),
			})
			continue
		}
		seen[string(key)] = r.Index
	}
	return warnings
}

func lintNode(index int, n domain.Node, path string) []Warning {
	var children []domain.Node
	switch v := n.(type) {
	case domain.All:
		if len(v.Children) == 0 {
			return []Warning{{Index: index, Path: path, Message: "empty all is always true"}}
		}
		children = v.Children
	case domain.Any:
		if len(v.Children) == 0 {
			return []Warning{{Index: index, Path: path, Message: "empty any is never true"}}
		}
		children = v.Children
	default:
		return nil
	}

	var warnings []Warning
	listPath := path + "." + domain.Kind(n)
	facts := make(map[string]bool)
	for i, c := range children {
		childPath := fmt.Sprintf("%s[%d]", listPath, i)
		var id string
		switch leaf := c.(type) {
		case domain.Leaf:
			id = leaf.ID
		case domain.Val:
			id = leaf.ID
		default:
			warnings = append(warnings, lintNode(index, c, childPath)...)
			continue
		}
		if facts[id] {
			warnings = append(warnings, Warning{Index: index, Path: childPath, Message: fmt.Sprintf("fact %q repeated", id)})
		}
		facts[id] = true
	}
	return warnings
}
