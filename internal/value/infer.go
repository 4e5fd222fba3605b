package value

import (
	"fmt"
	"strconv"
	"strings"
)

func fmtError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Infer classifies a trimmed token per §4.1. It never auto-quotes bare
// identifiers — an unquoted non-numeric, non-boolean token is an error,
// letting the caller (typically resolve_val) fall through to variable or
// label resolution instead.
func Infer(text string) (Value, error) {
	if text == "" {
		return Value{}, fmtError("empty token")
	}

	if strings.HasPrefix(text, "'''") && strings.HasSuffix(text, "'''") && len(text) >= 6 {
		return StringOf(text[3 : len(text)-3]), nil
	}
	if strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'") && len(text) >= 2 {
		return StringOf(text[1 : len(text)-1]), nil
	}
	if isCompositeOpen(text[0]) {
		closeTok := text[len(text)-1]
		if matchingPair(text[0], closeTok) {
			return ParseComposite(text)
		}
		return Value{}, fmtError("unterminated composite literal %q", text)
	}
	if text == "true" {
		return BoolOf(true), nil
	}
	if text == "false" {
		return BoolOf(false), nil
	}
	first := text[0]
	if first == '-' || (first >= '0' && first <= '9') {
		return parseNumeric(text)
	}
	return Value{}, fmtError("cannot infer a literal from %q", text)
}

func isCompositeOpen(b byte) bool {
	return b == '(' || b == '{' || b == '['
}

func parseNumeric(text string) (Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 32); err == nil {
			return IntOf(int32(i)), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, fmtError("invalid numeric literal %q", text)
	}
	return FloatOf(f), nil
}

// ParseInput implements parse_input: same as Infer, but any error demotes
// the raw text back to a String instead of propagating.
func ParseInput(text string) Value {
	v, err := Infer(text)
	if err != nil {
		return StringOf(text)
	}
	return v
}
