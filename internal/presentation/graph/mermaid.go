package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/rulebook/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the condition trees of rules.
// Each rule is drawn as a subgraph: the rule root points at its condition, and
// the condition points at the payload it gates. It applies semantic styling:
// - All: {Rhombus}
// - Any: {{Hexagon}}
// - Val: [/Parallelogram/]
// - Leaf: [Rectangle]
//
// When traces is non-nil, nodes are styled with the evaluation result found in
// the trace of the same rule index (true, false or skipped).
func GenerateMermaid(rules []*domain.Rule, traces map[int]domain.Trace) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, rule := range rules {
		g := &ruleGraph{sb: &sb, prefix: fmt.Sprintf("r%d", rule.Index)}
		var trace *domain.Trace
		if t, ok := traces[rule.Index]; ok {
			trace = &t
		}

		fmt.Fprintf(&sb, "    subgraph %s[\"rule #%d\"]\n", g.prefix, rule.Index)
		condID := g.walk(rule.Condition, trace)
		payloadID := g.prefix + "_payload"
		fmt.Fprintf(&sb, "        %s>\"%s\"]\n", payloadID, escapeLabel(describe(rule.Payload)))
		fmt.Fprintf(&sb, "        %s ==> %s\n", condID, payloadID)
		sb.WriteString("    end\n")
	}

	if traces != nil {
		sb.WriteString("\n    %% Evaluation Styles\n")
		// Black text keeps labels readable on both light and dark themes.
		sb.WriteString("    classDef pass fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef fail fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray: 4 4,color:#000;\n")
	}

	return sb.String()
}

type ruleGraph struct {
	sb     *strings.Builder
	prefix string
	next   int
}

// walk writes n and its descendants and returns the Mermaid ID of n.
// trace, if non-nil, has the same shape as n.
func (g *ruleGraph) walk(n domain.Node, trace *domain.Trace) string {
	id := fmt.Sprintf("%s_n%d", g.prefix, g.next)
	g.next++

	var children []domain.Node
	switch v := n.(type) {
	case domain.Leaf:
		fmt.Fprintf(g.sb, "        %s[\"%s\"]\n", id, escapeLabel(v.ID))
	case domain.Val:
		fmt.Fprintf(g.sb, "        %s[/\"val: %s\"/]\n", id, escapeLabel(v.ID))
	case domain.All:
		fmt.Fprintf(g.sb, "        %s{\"all\"}\n", id)
		children = v.Children
	case domain.Any:
		fmt.Fprintf(g.sb, "        %s{{\"any\"}}\n", id)
		children = v.Children
	}

	if trace != nil {
		fmt.Fprintf(g.sb, "        class %s %s;\n", id, traceClass(*trace))
	}

	for i, c := range children {
		var ct *domain.Trace
		if trace != nil && i < len(trace.Children) {
			ct = &trace.Children[i]
		}
		childID := g.walk(c, ct)
		fmt.Fprintf(g.sb, "        %s --> %s\n", id, childID)
	}
	return id
}

func traceClass(t domain.Trace) string {
	switch {
	case t.Skipped:
		return "skipped"
	case t.Result:
		return "pass"
	default:
		return "fail"
	}
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
