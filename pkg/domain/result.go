package domain

import "time"

// Outcome is the result of evaluating a single rule.
type Outcome struct {
	Index     int  `json:"index"`
	Condition any  `json:"cond"`
	Matched   bool `json:"matched"`

	// Payload is set only when Matched is true.
	Payload any `json:"payload,omitempty"`

	// Err is set only when the runner isolates per-rule failures.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Report summarizes one evaluation pass over a rule book.
type Report struct {
	// ID identifies the pass in logs, hooks and saved reports.
	ID        string        `json:"id"`
	Source    string        `json:"source,omitempty"`
	Outcomes  []Outcome     `json:"outcomes"`
	Evaluated int           `json:"evaluated"`
	Matched   int           `json:"matched"`
	Failed    int           `json:"failed"`
	Aborted   bool          `json:"aborted"`
	Duration  time.Duration `json:"duration_ns"`

	// AbortedAt is the malformed rule that stopped the pass. It is nil when
	// the pass completed or was interrupted between rules.
	AbortedAt *Outcome `json:"aborted_at,omitempty"`

	// Err is the error that aborted the pass, if any.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Payloads returns the payloads of matched rules, in rule order.
func (r *Report) Payloads() []any {
	var out []any
	for _, o := range r.Outcomes {
		if o.Matched {
			out = append(out, o.Payload)
		}
	}
	return out
}

// Trace records how a condition tree was evaluated.
// Children never visited because of short-circuiting are marked Skipped.
type Trace struct {
	Kind     string  `json:"kind"`
	ID       string  `json:"id,omitempty"`
	Result   bool    `json:"result"`
	Skipped  bool    `json:"skipped,omitempty"`
	Children []Trace `json:"children,omitempty"`
}
