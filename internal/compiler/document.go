package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/rulebook/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a rules or facts document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeDocument decodes a whole document. Decoder failures are wrapped with
// domain.ErrMalformedDocument.
func DecodeDocument(data []byte, format Format) (any, error) {
	switch format {
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
		return v, nil
	default:
		v, err := DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
		return v, nil
	}
}

// RuleBookFromDocument extracts the rule book from a decoded rules document of
// the form {"rules": [...]}. The entries themselves are not validated.
func RuleBookFromDocument(source string, doc any) (domain.RuleBook, error) {
	obj, ok := asObject(doc)
	if !ok {
		return domain.RuleBook{}, fmt.Errorf("%w: expected an object with a %q list, got %T", domain.ErrMalformedDocument, domain.KeyRules, doc)
	}
	raw, ok := obj[domain.KeyRules]
	if !ok {
		return domain.RuleBook{}, fmt.Errorf("%w: missing %q", domain.ErrMalformedDocument, domain.KeyRules)
	}
	entries, ok := raw.([]any)
	if !ok {
		return domain.RuleBook{}, fmt.Errorf("%w: %q must be a list, got %T", domain.ErrMalformedDocument, domain.KeyRules, raw)
	}
	return domain.RuleBook{Source: source, Entries: entries}, nil
}

// FactSetFromDocument extracts the fact set from a decoded facts document of the
// form {"vals": ["a", "b"]}.
func FactSetFromDocument(doc any) (domain.FactSet, error) {
	obj, ok := asObject(doc)
	if !ok {
		return domain.FactSet{}, fmt.Errorf("%w: expected an object with a %q list, got %T", domain.ErrMalformedDocument, domain.KeyVals, doc)
	}
	raw, ok := obj[domain.KeyVals]
	if !ok {
		return domain.FactSet{}, fmt.Errorf("%w: missing %q", domain.ErrMalformedDocument, domain.KeyVals)
	}
	return FactSetFromList(raw)
}

// FactSetFromList builds a fact set from a decoded list of strings.
func FactSetFromList(raw any) (domain.FactSet, error) {
	list, ok := raw.([]any)
	if !ok {
		return domain.FactSet{}, fmt.Errorf("%w: %q must be a list, got %T", domain.ErrMalformedDocument, domain.KeyVals, raw)
	}
	ids := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return domain.FactSet{}, fmt.Errorf("%w: %s[%d] must be a string, got %T", domain.ErrMalformedDocument, domain.KeyVals, i, v)
		}
		ids = append(ids, s)
	}
	return domain.NewFactSet(ids...), nil
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		return stringKeys(m)
	default:
		return nil, false
	}
}
