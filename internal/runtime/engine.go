package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/google/uuid"
)

// Runner evaluates the rules of a book, in order, against one fact set.
type Runner struct {
	parser          *compiler.Parser
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	continueOnError bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithParser replaces the parser used to decode rule entries.
func WithParser(p *compiler.Parser) Option {
	return func(r *Runner) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithContinueOnError switches the runner from aborting the whole pass on the
// first malformed rule to recording the failure on that rule's outcome and
// moving on to the next one.
func WithContinueOnError(enabled bool) Option {
	return func(r *Runner) {
		r.continueOnError = enabled
	}
}

// NewRunner creates a runner. By default it aborts on the first malformed rule.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		parser: compiler.NewParser(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every rule of the book against facts.
//
// A malformed rule or condition aborts the pass: later rules are not evaluated,
// the offending rule gets no outcome, and the error is returned together with
// the partial report. With WithContinueOnError the failure is recorded on the
// rule's outcome instead and the returned error aggregates all such failures.
// The context is checked between rules.
func (r *Runner) Run(ctx context.Context, book domain.RuleBook, facts domain.Facts) (*domain.Report, error) {
	if facts == nil {
		facts = domain.NewFactSet()
	}

	start := time.Now()
	report := &domain.Report{
		ID:       uuid.NewString(),
		Source:   book.Source,
		Outcomes: make([]domain.Outcome, 0, book.Len()),
	}
	logger := r.logger.With("source", book.Source, "run_id", report.ID)
	var failures []error

	for i, entry := range book.Entries {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, report, start, fmt.Errorf("run interrupted before rule #%d: %w", i, err))
		}

		r.emitRuleStart(ctx, book.Source, i, rawCondition(entry))
		ruleStart := time.Now()

		rule, err := r.parser.ParseRule(i, entry)
		if err != nil {
			if !r.continueOnError {
				report.AbortedAt = &domain.Outcome{Index: i, Condition: rawCondition(entry), Err: err, Error: err.Error()}
				return r.abort(ctx, report, start, err)
			}
			logger.Warn("Skipping malformed rule", "index", i, "err", err)
			failures = append(failures, err)
			outcome := domain.Outcome{Index: i, Condition: rawCondition(entry), Err: err, Error: err.Error()}
			report.Outcomes = append(report.Outcomes, outcome)
			report.Failed++
			r.emitRuleResult(ctx, book.Source, outcome, time.Since(ruleStart))
			continue
		}

		matched := Evaluate(rule.Condition, facts)
		outcome := domain.Outcome{Index: i, Condition: rule.Source, Matched: matched}
		if matched {
			outcome.Payload = rule.Payload
			report.Matched++
		}
		report.Evaluated++
		report.Outcomes = append(report.Outcomes, outcome)

		logger.Debug("Rule evaluated", "index", i, "matched", matched)
		r.emitRuleResult(ctx, book.Source, outcome, time.Since(ruleStart))
	}

	report.Duration = time.Since(start)
	if len(failures) > 0 {
		report.Err = &domain.AggregateError{Errors: failures}
		report.Error = report.Err.Error()
	}

	logger.Debug("Run complete", "evaluated", report.Evaluated, "matched", report.Matched, "failed", report.Failed)
	if r.hooks.OnRunComplete != nil {
		r.hooks.OnRunComplete(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunComplete, Source: book.Source},
			Report:    report,
			Err:       report.Err,
		})
	}
	return report, report.Err
}

func (r *Runner) abort(ctx context.Context, report *domain.Report, start time.Time, err error) (*domain.Report, error) {
	report.Duration = time.Since(start)
	report.Aborted = true
	report.Err = err
	report.Error = err.Error()

	r.logger.Warn("Rule run aborted", "source", report.Source, "run_id", report.ID, "evaluated", report.Evaluated, "err", err)
	if r.hooks.OnRunAbort != nil {
		r.hooks.OnRunAbort(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunAbort, Source: report.Source},
			Report:    report,
			Err:       err,
		})
	}
	return report, err
}

func (r *Runner) emitRuleStart(ctx context.Context, source string, index int, cond any) {
	if r.hooks.OnRuleStart == nil {
		return
	}
	r.hooks.OnRuleStart(ctx, &domain.RuleEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRuleStart, Source: source},
		Index:     index,
		Condition: cond,
	})
}

func (r *Runner) emitRuleResult(ctx context.Context, source string, o domain.Outcome, d time.Duration) {
	if r.hooks.OnRuleResult == nil {
		return
	}
	r.hooks.OnRuleResult(ctx, &domain.RuleEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRuleResult, Source: source},
		Index:     o.Index,
		Condition: o.Condition,
		Matched:   o.Matched,
		Payload:   o.Payload,
		Err:       o.Err,
		Duration:  d,
	})
}

// rawCondition extracts the cond field of an undecoded entry, if there is one.
func rawCondition(entry any) any {
	switch m := entry.(type) {
	case map[string]any:
		return m[domain.KeyCond]
	case map[any]any:
		return m[domain.KeyCond]
	default:
		return nil
	}
}
