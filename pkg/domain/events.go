package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRuleStart   EventType = "rule_start"
	EventRuleResult  EventType = "rule_result"
	EventRunAbort    EventType = "run_abort"
	EventRunComplete EventType = "run_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Source    string    `json:"source,omitempty"`
}

// RuleEvent is emitted before and after a rule is evaluated.
type RuleEvent struct {
	EventBase
	Index     int           `json:"index"`
	Condition any           `json:"cond,omitempty"`
	Matched   bool          `json:"matched"`
	Payload   any           `json:"payload,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
}

// RunEvent is emitted when a pass completes or aborts.
type RunEvent struct {
	EventBase
	Report *Report `json:"report"`
	Err    error   `json:"-"`
}

// LifecycleHooks defines callbacks for runner observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnRuleStart   func(context.Context, *RuleEvent)
	OnRuleResult  func(context.Context, *RuleEvent)
	OnRunAbort    func(context.Context, *RunEvent)
	OnRunComplete func(context.Context, *RunEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRuleStart:   chainRule(h.OnRuleStart, other.OnRuleStart),
		OnRuleResult:  chainRule(h.OnRuleResult, other.OnRuleResult),
		OnRunAbort:    chainRun(h.OnRunAbort, other.OnRunAbort),
		OnRunComplete: chainRun(h.OnRunComplete, other.OnRunComplete),
	}
}

func chainRule(a, b func(context.Context, *RuleEvent)) func(context.Context, *RuleEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RuleEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainRun(a, b func(context.Context, *RunEvent)) func(context.Context, *RunEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RunEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
