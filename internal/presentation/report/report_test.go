package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Source: "rules.json",
		Outcomes: []domain.Outcome{
			{Index: 0, Condition: map[string]any{"all": []any{"a", "b"}}, Matched: true, Payload: "P1"},
			{Index: 1, Condition: "z", Matched: false},
		},
		Evaluated: 2,
		Matched:   1,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText).Write(sampleReport()))

	assert.Equal(t,
		"Evaluating #0: {\"all\":[\"a\",\"b\"]}\n"+
			"\tPassed: Payload: P1\n"+
			"Evaluating #1: z\n"+
			"\tFailed\n",
		buf.String())
}

func TestWriteText_Aborted(t *testing.T) {
	r := sampleReport()
	r.Aborted = true
	r.Error = "rule #2: malformed node at $: ..."

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText).Write(r))
	assert.Contains(t, buf.String(), "\nError: rule #2: malformed node at $: ...\n")
}

func TestWriteText_AbortedAtRule(t *testing.T) {
	r := &domain.Report{
		Outcomes: []domain.Outcome{{Index: 0, Condition: "a", Matched: true, Payload: 1}},
		Aborted:  true,
		AbortedAt: &domain.Outcome{
			Index:     1,
			Condition: map[string]any{"bad": 1},
			Error:     "rule #1: malformed node at $: unknown key \"bad\"",
		},
		Error: "rule #1: malformed node at $: unknown key \"bad\"",
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText).Write(r))
	assert.Equal(t,
		"Evaluating #0: a\n\tPassed: Payload: 1\n"+
			"Evaluating #1: {\"bad\":1}\n"+
			"Error: rule #1: malformed node at $: unknown key \"bad\"\n",
		buf.String())
}

func TestWriteText_IsolatedFailure(t *testing.T) {
	r := &domain.Report{Outcomes: []domain.Outcome{
		{Index: 0, Condition: 5, Err: errors.New("malformed rule #0")},
	}}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText).Write(r))
	assert.Equal(t, "Evaluating #0: 5\n\tError: malformed rule #0\n", buf.String())
}

func TestWriteText_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, WithColorProfile(termenv.ANSI)).Write(sampleReport()))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Passed:")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON).Write(sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "rules.json", decoded["source"])
	assert.Len(t, decoded["outcomes"], 2)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport())
	assert.Contains(t, md, "# Rule Report: rules.json")
	assert.Contains(t, md, "**2** evaluated, **1** matched, **0** failed (complete)")
	assert.Contains(t, md, "| 0 | `{\"all\":[\"a\",\"b\"]}` | passed | P1 |")
	assert.Contains(t, md, "| 1 | `z` | failed |  |")
}

func TestWriteMarkdown_Renderer(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatMarkdown, WithMarkdownRenderer(func(s string) (string, error) {
		return "rendered:" + s, nil
	}))
	require.NoError(t, w.Write(sampleReport()))
	assert.Contains(t, buf.String(), "rendered:# Rule Report")
}
