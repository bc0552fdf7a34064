package report

import (
	"bytes"
	"testing"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTrace(t *testing.T) {
	trace := domain.Trace{Kind: "all", Result: false, Children: []domain.Trace{
		{Kind: "leaf", ID: "a", Result: true},
		{Kind: "any", Result: false, Children: []domain.Trace{
			{Kind: "val", ID: "b", Result: false},
		}},
		{Kind: "leaf", ID: "c", Skipped: true},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, trace))
	assert.Equal(t, "all: false\n  a: true\n  any: false\n    val b: false\n  c: skipped\n", buf.String())
}
