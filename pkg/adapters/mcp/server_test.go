package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/rulebook"
	"github.com/aretw0/rulebook/pkg/adapters/memory"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvaluate(t *testing.T) {
	s := NewServer(rulebook.New())

	resp, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"rules": `{"rules": [{"cond": {"all": ["a", {"any": ["x", "b"]}]}, "payload": "P1"}, {"cond": "z", "payload": "P2"}]}`,
		"vals":  `["a", "b"]`,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"P1"}, resp.Payloads)
	assert.Equal(t, 2, resp.Report.Evaluated)
}

func TestHandleEvaluate_BareList(t *testing.T) {
	s := NewServer(rulebook.New())

	resp, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"rules": `[{"cond": "a", "payload": 1}]`,
		"vals":  `["a"]`,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Payloads, 1)
}

func TestHandleEvaluate_AbortIsReported(t *testing.T) {
	s := NewServer(rulebook.New())

	resp, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"rules": `[{"cond": "a", "payload": "P"}, {"cond": {"bad": 1}, "payload": "Q"}]`,
		"vals":  `["a"]`,
	})
	require.NoError(t, err)
	assert.True(t, resp.Report.Aborted)
	assert.Equal(t, []any{"P"}, resp.Payloads)
	require.NotNil(t, resp.Report.AbortedAt)
	assert.Equal(t, 1, resp.Report.AbortedAt.Index)
}

func TestHandleEvaluate_BadArguments(t *testing.T) {
	s := NewServer(rulebook.New())

	_, err := s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"rules": `not json`,
		"vals":  `[]`,
	})
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)

	_, err = s.handleEvaluate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"rules": `[]`,
		"vals":  `[1]`,
	})
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestHandleCheck(t *testing.T) {
	s := NewServer(rulebook.New())

	resp, err := s.handleCheck(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"cond": `{"any": [{"val": "c"}, "d"]}`,
		"vals": `["a"]`,
	})
	require.NoError(t, err)
	assert.False(t, resp.Result)
	assert.Nil(t, resp.Trace)

	resp, err = s.handleCheck(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"cond":    `"a"`,
		"vals":    `["a"]`,
		"explain": true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Result)
	assert.Equal(t, []TraceNode{{Path: "$", Kind: "leaf", ID: "a", Result: true}}, resp.Trace)

	_, err = s.handleCheck(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"cond": `{"val": ["a"]}`,
		"vals": `[]`,
	})
	assert.ErrorIs(t, err, domain.ErrMalformedNode)
}

func TestHandleRun(t *testing.T) {
	rules := memory.NewRuleLoader("configured",
		map[string]any{"cond": "a", "payload": "configured-payload"},
	)
	s := NewServer(rulebook.New(), WithSources(rules, memory.NewFactStore("a")))

	resp, err := s.handleRun(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"configured-payload"}, resp.Payloads)
	assert.Equal(t, "configured", resp.Report.Source)
}

func TestToolsList(t *testing.T) {
	s := NewServer(rulebook.New(), WithSources(memory.NewRuleLoader("r"), memory.NewFactStore()))
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"evaluate_rules", "check_condition", "run_rulebook"} {
		assert.Contains(t, string(data), name)
	}
}

func TestHandleCheck_ExplainFlattensTrace(t *testing.T) {
	s := NewServer(rulebook.New())

	resp, err := s.handleCheck(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"cond":    `{"all": ["a", {"any": ["x", "b"]}, "c"]}`,
		"vals":    `["a"]`,
		"explain": true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Result)
	assert.Equal(t, []TraceNode{
		{Path: "$", Kind: "all", Result: false},
		{Path: "$.all[0]", Kind: "leaf", ID: "a", Result: true},
		{Path: "$.all[1]", Kind: "any", Result: false},
		{Path: "$.all[1].any[0]", Kind: "leaf", ID: "x", Result: false},
		{Path: "$.all[1].any[1]", Kind: "leaf", ID: "b", Result: false},
		{Path: "$.all[2]", Kind: "leaf", ID: "c", Skipped: true},
	}, resp.Trace)
}

func TestToolsList_CheckOutputSchema(t *testing.T) {
	s := NewServer(rulebook.New())
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "check_condition")
	assert.Contains(t, string(data), `"path"`)
	assert.NotContains(t, string(data), "run_rulebook")
}
