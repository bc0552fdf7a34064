package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/rulebook/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one record per event to logger.
// Rule events are logged at debug, aborts at warn, completions at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleResult: func(ctx context.Context, e *domain.RuleEvent) {
			attrs := []any{"index", e.Index, "matched", e.Matched, "duration", e.Duration}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.DebugContext(ctx, "rule_result", attrs...)
		},
		OnRunAbort: func(ctx context.Context, e *domain.RunEvent) {
			logger.WarnContext(ctx, "run_abort",
				"source", e.Source,
				"run_id", e.Report.ID,
				"evaluated", e.Report.Evaluated,
				"err", e.Err,
			)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_complete",
				"source", e.Source,
				"run_id", e.Report.ID,
				"evaluated", e.Report.Evaluated,
				"matched", e.Report.Matched,
				"failed", e.Report.Failed,
				"duration", e.Report.Duration,
			)
		},
	}
}
