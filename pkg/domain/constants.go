package domain

// Keys recognized in node and document encodings.
const (
	// KeyAny marks a disjunction node.
	KeyAny = "any"
	// KeyAll marks a conjunction node.
	KeyAll = "all"
	// KeyVal marks an explicit single-leaf node.
	KeyVal = "val"

	// KeyRules is the top-level list in a rules document.
	KeyRules = "rules"
	// KeyCond is the condition field of a rule entry.
	KeyCond = "cond"
	// KeyPayload is the payload field of a rule entry.
	KeyPayload = "payload"
	// KeyVals is the top-level list in a facts document.
	KeyVals = "vals"
)

// Default document names, relative to the working directory.
const (
	DefaultRulesFile = "rules.json"
	DefaultFactsFile = "data.json"
)
