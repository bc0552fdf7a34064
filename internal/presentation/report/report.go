// Package report renders evaluation reports for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/muesli/termenv"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or json)", s)
	}
}

// Writer renders reports in one format.
type Writer struct {
	out     io.Writer
	format  Format
	profile termenv.Profile
	render  func(string) (string, error)
}

// Option configures a Writer.
type Option func(*Writer)

// WithColorProfile colors PASS/FAIL markers in text output.
// The default is termenv.Ascii (no color).
func WithColorProfile(p termenv.Profile) Option {
	return func(w *Writer) {
		w.profile = p
	}
}

// WithMarkdownRenderer post-processes markdown output, typically through glamour.
func WithMarkdownRenderer(render func(string) (string, error)) Option {
	return func(w *Writer) {
		w.render = render
	}
}

// NewWriter creates a report writer.
func NewWriter(out io.Writer, format Format, opts ...Option) *Writer {
	w := &Writer{out: out, format: format, profile: termenv.Ascii}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report.
func (w *Writer) Write(r *domain.Report) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		md := Markdown(r)
		if w.render != nil {
			rendered, err := w.render(md)
			if err != nil {
				return fmt.Errorf("failed to render markdown: %w", err)
			}
			md = rendered
		}
		_, err := io.WriteString(w.out, md)
		return err
	default:
		return w.writeText(r)
	}
}

// writeText prints one block per rule:
//
//	Evaluating #0: {"all":["a","b"]}
//		Passed: Payload: P
//
// An aborted pass ends with the header of the offending rule, when there is
// one, and an Error line.
func (w *Writer) writeText(r *domain.Report) error {
	var sb strings.Builder
	for _, o := range r.Outcomes {
		fmt.Fprintf(&sb, "Evaluating #%d: %s\n", o.Index, Compact(o.Condition))
		switch {
		case o.Err != nil || o.Error != "":
			fmt.Fprintf(&sb, "\t%s %s\n", w.paint("Error:", "3"), outcomeError(o))
		case o.Matched:
			fmt.Fprintf(&sb, "\t%s Payload: %s\n", w.paint("Passed:", "2"), Compact(o.Payload))
		default:
			fmt.Fprintf(&sb, "\t%s\n", w.paint("Failed", "1"))
		}
	}
	if r.Aborted {
		if r.AbortedAt != nil {
			fmt.Fprintf(&sb, "Evaluating #%d: %s\n", r.AbortedAt.Index, Compact(r.AbortedAt.Condition))
		}
		fmt.Fprintf(&sb, "%s %s\n", w.paint("Error:", "1"), r.Error)
	}
	_, err := io.WriteString(w.out, sb.String())
	return err
}

func (w *Writer) paint(s, color string) string {
	if w.profile == termenv.Ascii {
		return s
	}
	return termenv.String(s).Foreground(w.profile.Color(color)).String()
}

// Markdown renders the report as a markdown document.
func Markdown(r *domain.Report) string {
	var sb strings.Builder
	title := "Rule Report"
	if r.Source != "" {
		title += ": " + r.Source
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	status := "complete"
	switch {
	case r.Aborted:
		status = "aborted"
	case r.Failed > 0:
		status = "partial"
	}
	fmt.Fprintf(&sb, "**%d** evaluated, **%d** matched, **%d** failed (%s)\n\n", r.Evaluated, r.Matched, r.Failed, status)

	if len(r.Outcomes) > 0 {
		sb.WriteString("| # | Condition | Result | Payload |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, o := range r.Outcomes {
			result, payload := "failed", ""
			switch {
			case o.Err != nil || o.Error != "":
				result = "error: " + outcomeError(o)
			case o.Matched:
				result, payload = "passed", Compact(o.Payload)
			}
			fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", o.Index, Compact(o.Condition), escapeCell(result), escapeCell(payload))
		}
		sb.WriteString("\n")
	}

	if r.Aborted {
		fmt.Fprintf(&sb, "> **Error:** %s\n", r.Error)
	}
	return sb.String()
}

// Compact renders a raw value as single-line JSON. Strings are printed bare.
func Compact(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func outcomeError(o domain.Outcome) string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return o.Error
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
