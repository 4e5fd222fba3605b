package host

import (
	"fmt"
	"regexp"

	"github.com/mitescript/mite/internal/value"
)

// regexMethod implements the three regex-flavored String methods, each
// compiling its pattern fresh per call (spec §4.9 "String.is_match" et
// al) — there is no regex cache, matching the simplicity of a
// line-oriented scripting runtime that does not expect regex-heavy hot
// loops.
func regexMethod(s, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "is_match":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("is_match expects 1 argument (regex_pattern)")
		}
		re, err := regexp.Compile(args[0].Display())
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %w", err)
		}
		return value.BoolOf(re.MatchString(s)), nil
	case "find_all":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("find_all expects 1 argument (regex_pattern)")
		}
		re, err := regexp.Compile(args[0].Display())
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %w", err)
		}
		matches := re.FindAllString(s, -1)
		out := make([]value.Value, len(matches))
		for i, m := range matches {
			out[i] = value.StringOf(m)
		}
		return value.VectorOf(out), nil
	case "regex_replace":
		if len(args) != 2 {
			return value.Value{}, fmt.Errorf("regex_replace expects 2 arguments (pattern, replacement)")
		}
		re, err := regexp.Compile(args[0].Display())
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid regex: %w", err)
		}
		return value.StringOf(re.ReplaceAllString(s, args[1].Display())), nil
	default:
		return value.Value{}, fmt.Errorf("unknown regex method %q", method)
	}
}
