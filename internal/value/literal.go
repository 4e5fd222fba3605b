package value

import (
	"strings"

	"github.com/mitescript/mite/internal/split"
)

// ParseComposite implements the composite-literal parser of §4.2. text
// must already be trimmed and must start with '(', '{', or '[' and end
// with the matching bracket.
func ParseComposite(text string) (Value, error) {
	if len(text) < 2 {
		return Value{}, fmtError("empty composite literal %q", text)
	}
	open := text[0]
	closeTok := text[len(text)-1]
	if !matchingPair(open, closeTok) {
		return Value{}, fmtError("unbalanced composite literal %q", text)
	}
	body := text[1 : len(text)-1]

	switch open {
	case '[':
		return parseVector(body)
	case '(':
		items, err := parseItems(body)
		if err != nil {
			return Value{}, err
		}
		return TupleOf(items), nil
	case '{':
		return parseBraced(body)
	default:
		return Value{}, fmtError("not a composite literal %q", text)
	}
}

func matchingPair(open, closeTok byte) bool {
	switch open {
	case '(':
		return closeTok == ')'
	case '{':
		return closeTok == '}'
	case '[':
		return closeTok == ']'
	default:
		return false
	}
}

func parseVector(body string) (Value, error) {
	items, err := parseItems(body)
	if err != nil {
		return Value{}, err
	}
	if items == nil {
		items = []Value{}
	}
	return VectorOf(items), nil
}

// parseBraced implements the shape rule: a brace literal is a Map if its
// first item contains a top-level ':', otherwise a Vector. Empty {} is a
// Vector per §9's documented (if questionable) current behavior.
func parseBraced(body string) (Value, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return VectorOf([]Value{}), nil
	}
	rawItems := split.TopLevelCommas(body)
	firstHasColon := split.FirstTopLevelIndex(strings.TrimSpace(rawItems[0]), ':') >= 0
	if !firstHasColon {
		return parseVector(body)
	}
	m := map[string]Value{}
	for _, raw := range rawItems {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		idx := split.FirstTopLevelIndex(item, ':')
		if idx < 0 {
			return Value{}, fmtError("map item missing ':' in %q", item)
		}
		key := strings.TrimSpace(item[:idx])
		key = stripQuotes(key)
		valText := strings.TrimSpace(item[idx+1:])
		v, err := Infer(valText)
		if err != nil {
			return Value{}, err
		}
		m[key] = v
	}
	return MapOf(m), nil
}

func parseItems(body string) ([]Value, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, nil
	}
	raw := split.TopLevelCommas(body)
	items := make([]Value, 0, len(raw))
	for _, r := range raw {
		item := strings.TrimSpace(r)
		if item == "" {
			continue
		}
		v, err := Infer(item)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
