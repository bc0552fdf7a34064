package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedNode is matched by every *MalformedNodeError.
	ErrMalformedNode = errors.New("malformed node")

	// ErrMalformedRule is matched by every *MalformedRuleError.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrMalformedDocument is returned by loaders when a rules or facts document
	// cannot be parsed or does not have the expected shape.
	ErrMalformedDocument = errors.New("malformed document")
)

// MalformedNodeError reports a node encoding that matches none of the grammar's shapes.
type MalformedNodeError struct {
	// Path locates the node inside its condition, e.g. "$.all[1].any[0]".
	Path string
	// Encoding is the offending raw value.
	Encoding any
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed node at %s: %s: %s", e.Path, e.Reason, describe(e.Encoding))
}

func (e *MalformedNodeError) Unwrap() error {
	return ErrMalformedNode
}

// MalformedRuleError reports a rule entry that lacks a required field or whose
// condition is not a string or object.
type MalformedRuleError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRuleError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed rule #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed rule #%d: field %q: %s", e.Index, e.Field, e.Reason)
}

func (e *MalformedRuleError) Unwrap() error {
	return ErrMalformedRule
}

// AggregateError collects several independent failures, e.g. when validating
// a whole rule book.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// describe renders an encoding compactly for error messages.
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v (%T)", x, x)
	}
}
