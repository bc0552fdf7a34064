package runtime_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/internal/runtime"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(t *testing.T, rules string) domain.RuleBook {
	t.Helper()
	raw, err := compiler.DecodeJSON([]byte(rules))
	require.NoError(t, err)
	entries, ok := raw.([]any)
	require.True(t, ok, "rules fixture must be a JSON array")
	return domain.RuleBook{Source: "test", Entries: entries}
}

func TestRunner_PayloadGating(t *testing.T) {
	b := book(t, `[
		{"cond": "a", "payload": "P1"},
		{"cond": "z", "payload": "P2"},
		{"cond": {"all": ["a", "b"]}, "payload": {"kind": "object"}}
	]`)

	report, err := runtime.NewRunner().Run(context.Background(), b, domain.NewFactSet("a", "b"))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.True(t, report.Outcomes[0].Matched)
	assert.Equal(t, "P1", report.Outcomes[0].Payload)
	assert.False(t, report.Outcomes[1].Matched)
	assert.Nil(t, report.Outcomes[1].Payload, "payload is only returned on match")
	assert.Equal(t, map[string]any{"kind": "object"}, report.Outcomes[2].Payload)

	assert.Equal(t, 3, report.Evaluated)
	assert.Equal(t, 2, report.Matched)
	assert.False(t, report.Aborted)
	assert.Equal(t, []any{"P1", map[string]any{"kind": "object"}}, report.Payloads())
}

func TestRunner_AbortsOnMalformedNode(t *testing.T) {
	b := book(t, `[
		{"cond": "a", "payload": "P"},
		{"cond": {"bad": 1}, "payload": "Q"},
		{"cond": "a", "payload": "R"}
	]`)

	report, err := runtime.NewRunner().Run(context.Background(), b, domain.NewFactSet("a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedNode)

	var nodeErr *domain.MalformedNodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, map[string]any{"bad": json.Number("1")}, nodeErr.Encoding)

	require.NotNil(t, report)
	assert.True(t, report.Aborted)
	assert.Same(t, err, report.Err)
	require.Len(t, report.Outcomes, 1, "rule 0 is reported, rule 2 never runs")
	assert.Equal(t, "P", report.Outcomes[0].Payload)
	assert.Equal(t, 1, report.Evaluated)

	require.NotNil(t, report.AbortedAt)
	assert.Equal(t, 1, report.AbortedAt.Index)
	assert.Equal(t, map[string]any{"bad": json.Number("1")}, report.AbortedAt.Condition)
	assert.Same(t, err, report.AbortedAt.Err)
}

func TestRunner_AbortsOnMalformedRule(t *testing.T) {
	cases := map[string]string{
		"missing cond":     `[{"payload": "P"}]`,
		"missing payload":  `[{"cond": "a"}]`,
		"cond is a number": `[{"cond": 5, "payload": "P"}]`,
		"entry not object": `["a"]`,
		"upper case keys":  `[{"COND": "a", "PAYLOAD": "P"}]`,
		"capitalized cond": `[{"Cond": "a", "payload": "P"}]`,
	}
	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			report, err := runtime.NewRunner().Run(context.Background(), book(t, rules), domain.NewFactSet("a"))
			assert.ErrorIs(t, err, domain.ErrMalformedRule)
			assert.True(t, report.Aborted)
			assert.Empty(t, report.Outcomes)
			assert.Empty(t, report.Payloads())
			require.NotNil(t, report.AbortedAt)
			assert.Equal(t, 0, report.AbortedAt.Index)
		})
	}
}

func TestRunner_NullPayloadIsPresent(t *testing.T) {
	report, err := runtime.NewRunner().Run(context.Background(), book(t, `[{"cond": "a", "payload": null}]`), domain.NewFactSet("a"))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Matched)
	assert.Nil(t, report.Outcomes[0].Payload)
}

func TestRunner_ContinueOnError(t *testing.T) {
	b := book(t, `[
		{"cond": "a", "payload": "P"},
		{"cond": {"bad": 1}, "payload": "Q"},
		{"payload": "missing cond"},
		{"cond": "a", "payload": "R"}
	]`)

	runner := runtime.NewRunner(runtime.WithContinueOnError(true))
	report, err := runner.Run(context.Background(), b, domain.NewFactSet("a"))

	var agg *domain.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.ErrorIs(t, err, domain.ErrMalformedNode)
	assert.ErrorIs(t, err, domain.ErrMalformedRule)

	assert.False(t, report.Aborted)
	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, 2, report.Evaluated)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Matched)

	assert.NoError(t, report.Outcomes[0].Err)
	assert.ErrorIs(t, report.Outcomes[1].Err, domain.ErrMalformedNode)
	assert.NotEmpty(t, report.Outcomes[1].Error)
	assert.False(t, report.Outcomes[1].Matched)
	assert.ErrorIs(t, report.Outcomes[2].Err, domain.ErrMalformedRule)
	assert.Equal(t, "R", report.Outcomes[3].Payload)
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := book(t, `[{"cond": "a", "payload": 1}, {"cond": "a", "payload": 2}]`)

	hooks := domain.LifecycleHooks{
		OnRuleResult: func(context.Context, *domain.RuleEvent) { cancel() },
	}
	report, err := runtime.NewRunner(runtime.WithLifecycleHooks(hooks)).Run(ctx, b, domain.NewFactSet("a"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Aborted)
	assert.Len(t, report.Outcomes, 1)
	assert.Nil(t, report.AbortedAt)
}

func TestRunner_EmptyBookAndNilFacts(t *testing.T) {
	report, err := runtime.NewRunner().Run(context.Background(), domain.RuleBook{}, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)

	report, err = runtime.NewRunner().Run(context.Background(), book(t, `[{"cond": "a", "payload": 1}]`), nil)
	require.NoError(t, err)
	assert.False(t, report.Outcomes[0].Matched)
}

func TestRunner_LifecycleHooks(t *testing.T) {
	b := book(t, `[{"cond": "a", "payload": "P"}, {"cond": "b", "payload": "Q"}]`)

	var started, finished []int
	var matched []bool
	var completed *domain.Report
	hooks := domain.LifecycleHooks{
		OnRuleStart: func(_ context.Context, e *domain.RuleEvent) {
			assert.Equal(t, domain.EventRuleStart, e.Type)
			started = append(started, e.Index)
		},
		OnRuleResult: func(_ context.Context, e *domain.RuleEvent) {
			assert.Equal(t, domain.EventRuleResult, e.Type)
			assert.Equal(t, "test", e.Source)
			finished = append(finished, e.Index)
			matched = append(matched, e.Matched)
		},
		OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
			completed = e.Report
		},
		OnRunAbort: func(context.Context, *domain.RunEvent) {
			t.Error("run should not abort")
		},
	}

	report, err := runtime.NewRunner(runtime.WithLifecycleHooks(hooks)).Run(context.Background(), b, domain.NewFactSet("a"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, started)
	assert.Equal(t, []int{0, 1}, finished)
	assert.Equal(t, []bool{true, false}, matched)
	assert.Same(t, report, completed)
}

func TestRunner_AbortHook(t *testing.T) {
	b := book(t, `[{"cond": "a", "payload": "P"}, {"cond": 7, "payload": "Q"}]`)

	var aborted *domain.RunEvent
	hooks := domain.LifecycleHooks{
		OnRunAbort: func(_ context.Context, e *domain.RunEvent) { aborted = e },
		OnRunComplete: func(context.Context, *domain.RunEvent) {
			t.Error("aborted run must not report completion")
		},
	}
	_, err := runtime.NewRunner(runtime.WithLifecycleHooks(hooks)).Run(context.Background(), b, domain.NewFactSet("a"))
	require.Error(t, err)
	require.NotNil(t, aborted)
	assert.Equal(t, domain.EventRunAbort, aborted.Type)
	assert.True(t, errors.Is(aborted.Err, domain.ErrMalformedRule))
	assert.Len(t, aborted.Report.Outcomes, 1)
}

func TestRunner_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := book(t, `[{"cond": "a", "payload": "P"}, {"cond": [], "payload": "Q"}]`)
	_, err := runtime.NewRunner(runtime.WithLogger(logger)).Run(context.Background(), b, domain.NewFactSet("a"))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "Rule evaluated")
	assert.Contains(t, out, "Rule run aborted")
	assert.Contains(t, out, "source=test")
	assert.Contains(t, out, "run_id=")
}

func TestRunner_ReportID(t *testing.T) {
	b := book(t, `[{"cond": "a", "payload": "P"}]`)
	runner := runtime.NewRunner()

	first, err := runner.Run(context.Background(), b, nil)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), b, nil)
	require.NoError(t, err)

	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunner_MaxDepth(t *testing.T) {
	b := book(t, `[{"cond": {"all": {"all": {"all": "a"}}}, "payload": "P"}]`)

	runner := runtime.NewRunner(runtime.WithParser(compiler.NewParser(compiler.WithMaxDepth(2))))
	_, err := runner.Run(context.Background(), b, domain.NewFactSet("a"))
	assert.ErrorIs(t, err, domain.ErrMalformedNode)

	report, err := runtime.NewRunner().Run(context.Background(), b, domain.NewFactSet("a"))
	require.NoError(t, err)
	assert.True(t, report.Outcomes[0].Matched)
}
