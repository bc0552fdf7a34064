package domain

// RuleBook is an ordered sequence of raw rule entries as read from a document.
// Entries are decoded lazily, one at a time, by the runner.
type RuleBook struct {
	// Source describes where the rules came from (file path, URL, "inline").
	Source string

	// Entries holds the undecoded rule objects in document order.
	Entries []any
}

// Len returns the number of entries in the book.
func (b RuleBook) Len() int {
	return len(b.Entries)
}

// Rule is a decoded rule entry.
type Rule struct {
	// Index is the position of the rule in its book.
	Index int

	// Condition is the decoded condition tree.
	Condition Node

	// Source is the raw "cond" encoding, kept for diagnostics and reports.
	Source any

	// Payload is carried through unevaluated.
	Payload any
}
