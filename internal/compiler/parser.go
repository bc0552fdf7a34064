package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DefaultMaxDepth bounds the nesting of condition trees accepted by the parser.
const DefaultMaxDepth = 512

// Parser converts raw encodings (as produced by JSON or YAML decoders) into
// typed condition trees and rules. A Parser holds no state between calls and is
// safe for concurrent use.
type Parser struct {
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum nesting depth of a condition tree.
// Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseNode decodes a node encoding: a bare string, or an object with exactly one
// of the keys any, all or val. Single values under any/all are normalized to a
// one-element list here, so the evaluator only ever sees lists.
func (p *Parser) ParseNode(raw any) (domain.Node, error) {
	return p.parse(raw, "$", 0)
}

func (p *Parser) parse(raw any, path string, depth int) (domain.Node, error) {
	if depth >= p.maxDepth {
		return nil, malformed(path, raw, fmt.Sprintf("maximum depth of %d exceeded", p.maxDepth))
	}

	switch v := raw.(type) {
	case string:
		return domain.Leaf{ID: v}, nil
	case map[string]any:
		return p.parseKeyed(v, path, depth)
	case map[any]any:
		m, ok := stringKeys(v)
		if !ok {
			return nil, malformed(path, raw, "object keys must be strings")
		}
		return p.parseKeyed(m, path, depth)
	default:
		return nil, malformed(path, raw, "expected a string or an object")
	}
}

func (p *Parser) parseKeyed(obj map[string]any, path string, depth int) (domain.Node, error) {
	var key string
	var found, unknown []string
	for k := range obj {
		switch k {
		case domain.KeyAny, domain.KeyAll, domain.KeyVal:
			found = append(found, k)
			key = k
		default:
			unknown = append(unknown, k)
		}
	}

	switch {
	case len(found) == 0:
		return nil, malformed(path, obj, "object has none of the keys any, all, val")
	case len(found) > 1:
		sort.Strings(found)
		return nil, malformed(path, obj, fmt.Sprintf("object has more than one of the keys any, all, val: %v", found))
	case len(unknown) > 0:
		sort.Strings(unknown)
		return nil, malformed(path, obj, fmt.Sprintf("unrecognized key %q", unknown[0]))
	}

	value := obj[key]
	keyPath := path + "." + key

	if key == domain.KeyVal {
		id, err := parseVal(value, keyPath)
		if err != nil {
			return nil, err
		}
		return domain.Val{ID: id}, nil
	}

	items := normalize(value)
	children := make([]domain.Node, 0, len(items))
	for i, item := range items {
		child, err := p.parse(item, fmt.Sprintf("%s[%d]", keyPath, i), depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if key == domain.KeyAny {
		return domain.Any{Children: children}, nil
	}
	return domain.All{Children: children}, nil
}

func parseVal(value any, path string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any, []string:
		return "", malformed(path, value, "val expects a single identifier, got a list")
	case map[string]any, map[any]any:
		return "", malformed(path, value, "val expects an identifier, got an object")
	default:
		return "", malformed(path, value, "val expects a string")
	}
}

// normalize turns the value of an any/all key into an ordered list of child encodings.
func normalize(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{value}
	}
}

func stringKeys(m map[any]any) (map[string]any, bool) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		s, ok := k.(string)
		if !ok {
			return nil, false
		}
		out[s] = v
	}
	return out, true
}

func malformed(path string, raw any, reason string) error {
	return &domain.MalformedNodeError{Path: path, Encoding: raw, Reason: reason}
}

// ruleEntry mirrors one element of a rules document.
type ruleEntry struct {
	Cond    any `mapstructure:"cond"`
	Payload any `mapstructure:"payload"`
}

// ParseRule decodes the rule entry at position index of a rule book.
// Missing fields and a condition that is neither a string nor an object yield a
// *domain.MalformedRuleError; grammar errors inside the condition yield a
// *domain.MalformedNodeError wrapped with the rule index.
func (p *Parser) ParseRule(index int, entry any) (*domain.Rule, error) {
	switch entry.(type) {
	case map[string]any, map[any]any:
	default:
		return nil, &domain.MalformedRuleError{Index: index, Reason: fmt.Sprintf("expected an object, got %T", entry)}
	}

	var e ruleEntry
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &e,
		// Keys are case sensitive: "Cond" is an unknown key, not cond.
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rule decoder: %w", err)
	}
	if err := dec.Decode(entry); err != nil {
		return nil, &domain.MalformedRuleError{Index: index, Reason: err.Error()}
	}

	unset := make(map[string]bool, len(md.Unset))
	for _, k := range md.Unset {
		unset[k] = true
	}
	for _, field := range []string{domain.KeyCond, domain.KeyPayload} {
		if unset[field] {
			return nil, &domain.MalformedRuleError{Index: index, Field: field, Reason: "missing"}
		}
	}

	switch e.Cond.(type) {
	case string, map[string]any, map[any]any:
	default:
		return nil, &domain.MalformedRuleError{
			Index:  index,
			Field:  domain.KeyCond,
			Reason: fmt.Sprintf("expected a string or an object, got %T", e.Cond),
		}
	}

	cond, err := p.ParseNode(e.Cond)
	if err != nil {
		return nil, fmt.Errorf("rule #%d: %w", index, err)
	}

	return &domain.Rule{
		Index:     index,
		Condition: cond,
		Source:    e.Cond,
		Payload:   e.Payload,
	}, nil
}

// ParseBook decodes every entry of the book without evaluating anything.
// All failures are collected into a *domain.AggregateError.
func (p *Parser) ParseBook(book domain.RuleBook) ([]*domain.Rule, error) {
	rules := make([]*domain.Rule, 0, len(book.Entries))
	var errs []error
	for i, entry := range book.Entries {
		r, err := p.ParseRule(i, entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, r)
	}
	if len(errs) > 0 {
		return rules, &domain.AggregateError{Errors: errs}
	}
	return rules, nil
}

// DecodeJSON decodes a single JSON value, keeping numbers as json.Number so
// large integer payloads survive a round trip.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// ParseJSON decodes a JSON node encoding and parses it.
func (p *Parser) ParseJSON(data []byte) (domain.Node, any, error) {
	raw, err := DecodeJSON(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	n, err := p.ParseNode(raw)
	if err != nil {
		return nil, raw, err
	}
	return n, raw, nil
}
