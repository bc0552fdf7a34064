package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/rulebook/pkg/domain"
)

// WriteTrace prints an evaluation trace as an indented tree:
//
//	all: false
//	  a: true
//	  b: false
//	  c: skipped
func WriteTrace(out io.Writer, t domain.Trace) error {
	var sb strings.Builder
	writeTrace(&sb, t, 0)
	_, err := io.WriteString(out, sb.String())
	return err
}

func writeTrace(sb *strings.Builder, t domain.Trace, depth int) {
	label := t.Kind
	switch t.Kind {
	case "leaf":
		label = t.ID
	case "val":
		label = "val " + t.ID
	}

	result := fmt.Sprintf("%t", t.Result)
	if t.Skipped {
		result = "skipped"
	}
	fmt.Fprintf(sb, "%s%s: %s\n", strings.Repeat("  ", depth), label, result)

	for _, c := range t.Children {
		writeTrace(sb, c, depth+1)
	}
}
