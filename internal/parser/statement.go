package parser

import (
	"strings"

	"github.com/mitescript/mite/internal/diag"
	"github.com/mitescript/mite/internal/program"
	"github.com/mitescript/mite/internal/split"
)

// parseLine dispatches on the first whitespace-delimited word of a stripped
// statement body, mirroring parse_line. An unrecognized first word falls
// through to parseAssignmentOrArithmetic, same as the original's catch-all.
func parseLine(lineNum int, line string) (program.Statement, error) {
	trimmed := strings.TrimSpace(line)
	cmd, rest := splitFirstWord(trimmed)

	switch cmd {
	case "print":
		segs, err := parseTemplate(lineNum, rest)
		if err != nil {
			return program.Statement{}, err
		}
		return program.Statement{Kind: program.Print, Segments: segs}, nil
	case "input":
		return program.Statement{Kind: program.Input, Name: stripLegacyAssign(rest)}, nil
	case "time":
		return program.Statement{Kind: program.Time, Name: stripLegacyAssign(rest)}, nil
	case "method":
		return parseMethod(lineNum, rest)
	case "goto":
		return program.Statement{Kind: program.Goto, Name: stripLegacyAssign(rest)}, nil
	case "label":
		return program.Statement{Kind: program.Label, Name: stripLegacyAssign(rest)}, nil
	case "function":
		return parseDefinition(lineNum, rest)
	case "module":
		return program.Statement{Kind: program.ModuleStart, Name: stripLegacyAssign(rest)}, nil
	case "exec":
		return parseExec(lineNum, rest)
	case "if":
		return program.Statement{Kind: program.If, CondTokens: splitCondition(rest)}, nil
	case "else_if":
		return program.Statement{Kind: program.ElseIf, CondTokens: splitCondition(rest)}, nil
	case "match":
		return program.Statement{Kind: program.Match, Name: stripLegacyAssign(rest)}, nil
	case "case":
		return program.Statement{Kind: program.Case, Operand: stripLegacyAssign(rest)}, nil
	case "while":
		return program.Statement{Kind: program.While, CondTokens: splitCondition(rest)}, nil
	case "for":
		return parseFor(lineNum, rest)
	case "foreach":
		return parseForeach(lineNum, rest)
	case "call":
		return program.Statement{Kind: program.Call, Name: stripLegacyAssign(rest)}, nil
	case "return":
		val := stripLegacyAssign(rest)
		return program.Statement{Kind: program.Return, Operand: val}, nil
	case "else":
		return program.Statement{Kind: program.Else}, nil
	case "loop":
		return program.Statement{Kind: program.Loop}, nil
	case "break":
		return program.Statement{Kind: program.Break}, nil
	case "default":
		return program.Statement{Kind: program.Default}, nil
	case "try":
		return program.Statement{Kind: program.Try}, nil
	case "catch":
		return program.Statement{Kind: program.Catch}, nil
	case "global":
		return parseAssignmentOrArithmetic(lineNum, rest, true, false)
	case "var", "local":
		return parseAssignmentOrArithmetic(lineNum, rest, false, true)
	}

	return parseAssignmentOrArithmetic(lineNum, trimmed, false, false)
}

func splitFirstWord(s string) (string, string) {
	idx := strings.IndexFunc(s, isSpaceRune)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func splitCondition(rest string) []string {
	return strings.Fields(stripLegacyAssign(rest))
}

func parseExec(lineNum int, value string) (program.Statement, error) {
	trimmed := stripLegacyAssign(value)
	if idx := strings.IndexByte(trimmed, ' '); idx >= 0 {
		return program.Statement{
			Kind: program.Exec,
			Name: trimmed[:idx],
			Args: []string{strings.TrimSpace(trimmed[idx:])},
		}, nil
	}
	return program.Statement{Kind: program.Exec, Name: trimmed}, nil
}

func parseFor(lineNum int, value string) (program.Statement, error) {
	parts := strings.Fields(stripLegacyAssign(value))
	if len(parts) != 3 {
		return program.Statement{}, diag.ParseError(lineNum, "invalid for loop format, expected 'var start end'")
	}
	return program.Statement{Kind: program.For, Name: parts[0], ForStart: parts[1], ForEnd: parts[2]}, nil
}

func parseForeach(lineNum int, value string) (program.Statement, error) {
	parts := strings.Fields(stripLegacyAssign(value))
	if len(parts) != 3 || parts[1] != "in" {
		return program.Statement{}, diag.ParseError(lineNum, "invalid foreach format, expected 'var in collection'")
	}
	return program.Statement{Kind: program.Foreach, Name: parts[0], ForeachCollection: parts[2]}, nil
}

// parseMethod parses the legacy explicit `method=obj.m(args)` form (§9:
// retained for compatibility, deprecated).
func parseMethod(lineNum int, value string) (program.Statement, error) {
	inner := stripLegacyAssign(value)
	target := ""
	rest := inner
	if idx := strings.IndexByte(inner, '='); idx >= 0 {
		target = strings.TrimSpace(inner[:idx])
		rest = strings.TrimSpace(inner[idx+1:])
	}
	dotIdx := strings.IndexByte(rest, '.')
	if dotIdx < 0 {
		return program.Statement{}, diag.ParseError(lineNum, "method call requires object.method()")
	}
	object := strings.TrimSpace(rest[:dotIdx])
	afterDot := rest[dotIdx+1:]
	parenIdx := strings.IndexByte(afterDot, '(')
	if parenIdx < 0 {
		return program.Statement{}, diag.ParseError(lineNum, "method call requires (...)")
	}
	method := strings.TrimSpace(afterDot[:parenIdx])
	if !strings.HasSuffix(afterDot, ")") {
		return program.Statement{}, diag.ParseError(lineNum, "missing closing ')'")
	}
	argsStr := afterDot[parenIdx+1 : len(afterDot)-1]
	var args []string
	if strings.TrimSpace(argsStr) != "" {
		args = split.Args(argsStr)
	}
	return program.Statement{
		Kind:      program.MethodCall,
		Name:      target,
		Qualifier: object,
		Op:        method,
		Args:      args,
	}, nil
}

// parseDefinition parses `function name p1 p2 ...`, storing the parameter
// names as Args.
func parseDefinition(lineNum int, raw string) (program.Statement, error) {
	trimmed := stripQuotesLoose(raw)
	if trimmed == "" {
		return program.Statement{}, diag.ParseError(lineNum, "function definition cannot be empty")
	}
	parts := strings.Fields(trimmed)
	if len(parts) == 0 {
		return program.Statement{}, diag.ParseError(lineNum, "function missing name")
	}
	return program.Statement{Kind: program.FunctionDef, Name: parts[0], Args: parts[1:]}, nil
}

func stripQuotesLoose(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "'''") && strings.HasSuffix(t, "'''") && len(t) >= 6 {
		return t[3 : len(t)-3]
	}
	if len(t) >= 2 && t[0] == '\'' && t[len(t)-1] == '\'' {
		return t[1 : len(t)-1]
	}
	if len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' {
		return t[1 : len(t)-1]
	}
	return t
}

// parseCall parses `target = name(args)` or `name(args)`, shared by
// FunctionCall recognition inside parseAssignmentOrArithmetic.
func parseCall(raw string) (target string, hasTarget bool, name string, args []string, err error) {
	inner := stripQuotesLoose(raw)
	rest := inner
	if idx := strings.IndexByte(inner, '='); idx >= 0 {
		target = strings.TrimSpace(inner[:idx])
		hasTarget = true
		rest = strings.TrimSpace(inner[idx+1:])
	}
	parenOpen := strings.IndexByte(rest, '(')
	if parenOpen < 0 {
		return "", false, "", nil, diag.ParseError(0, "function call requires '('")
	}
	parenClose := strings.LastIndexByte(rest, ')')
	if parenClose < 0 {
		return "", false, "", nil, diag.ParseError(0, "function call requires ')'")
	}
	funcName := strings.TrimSpace(rest[:parenOpen])
	if funcName == "" {
		return "", false, "", nil, diag.ParseError(0, "function name cannot be empty")
	}
	argsStr := rest[parenOpen+1 : parenClose]
	if strings.TrimSpace(argsStr) != "" {
		args = split.Args(argsStr)
	}
	return target, hasTarget, funcName, args, nil
}

var compoundOps = []string{"+=", "-=", "*=", "/=", "%="}
var arithOps = []string{"+", "-", "*", "/", "%", "==", "!=", ">", "<", ">=", "<=", "&&", "||"}

// parseAssignmentOrArithmetic implements the three surface forms sharing no
// leading keyword: `target = name(args)` function calls, `x = expr` /
// `x op= expr` assignment, and `target left op right` three-address
// arithmetic — mirroring parse_assignment_or_arithmetic's exact precedence
// (function-call shape tried first, then `=`, then compound ops, then
// three-address).
func parseAssignmentOrArithmetic(lineNum int, line string, isGlobal, isLocal bool) (program.Statement, error) {
	hasParen := strings.Contains(line, "(") && strings.HasSuffix(line, ")")
	if hasParen {
		if target, hasTarget, name, args, err := parseCall(line); err == nil {
			stmt := program.Statement{Kind: program.FunctionCall, Name: name, Args: args}
			if hasTarget {
				stmt.Qualifier = target
			}
			return stmt, nil
		}
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return program.Statement{}, diag.ParseError(lineNum, "invalid expression")
	}

	if len(parts) >= 2 && parts[1] == "=" {
		target := parts[0]
		eqIdx := strings.IndexByte(line, '=')
		operand := strings.TrimSpace(line[eqIdx+1:])
		switch {
		case isGlobal:
			return program.Statement{Kind: program.DefineGlobal, Name: target, Op: "=", Operand: operand}, nil
		case isLocal:
			return program.Statement{Kind: program.DefineLocal, Name: target, Op: "=", Operand: operand}, nil
		default:
			return program.Statement{Kind: program.CalcAssignment, Name: target, Op: "=", Operand: operand}, nil
		}
	}

	if len(parts) >= 2 && contains(compoundOps, parts[1]) {
		if isGlobal || isLocal {
			return program.Statement{}, diag.ParseError(lineNum,
				"compound assignment (+=, -=) not supported in variable declaration; use 'var x = 1' then 'x += 1'")
		}
		target := parts[0]
		op := parts[1]
		opIdx := strings.Index(line, op)
		operand := strings.TrimSpace(line[opIdx+len(op):])
		return program.Statement{Kind: program.CalcAssignment, Name: target, Op: strings.TrimSuffix(op, "="), Operand: operand}, nil
	}

	if len(parts) >= 4 {
		target := parts[0]
		left := parts[1]
		op := parts[2]
		if contains(arithOps, op) {
			opIdx := strings.Index(line, op)
			right := strings.TrimSpace(line[opIdx+len(op):])
			return program.Statement{Kind: program.CalcArithmetic, Name: target, Left: left, Op: op, Right: right}, nil
		}
	}

	return program.Statement{}, diag.ParseError(lineNum, "unrecognized assignment or arithmetic expression: %q", line)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseTemplate splits a print argument into literal/variable segments,
// mirroring parse_template. An argument that is not quoted at all becomes a
// single whole-expression Variable segment (so `print x` prints x's value
// without braces).
func parseTemplate(lineNum int, template string) ([]program.PrintSegment, error) {
	trimmed := stripLegacyAssign(template)
	isTriple := strings.HasPrefix(trimmed, "'''") && strings.HasSuffix(trimmed, "'''") && len(trimmed) >= 6
	isSingle := len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\''

	if !isTriple && !isSingle {
		return []program.PrintSegment{{Literal: false, Text: trimmed}}, nil
	}

	var content string
	if isTriple {
		content = trimmed[3 : len(trimmed)-3]
	} else {
		content = trimmed[1 : len(trimmed)-1]
	}

	var segs []program.PrintSegment
	lastPos := 0
	i := 0
	for i < len(content) {
		if content[i] != '{' {
			i++
			continue
		}
		if i > lastPos {
			segs = append(segs, program.PrintSegment{Literal: true, Text: content[lastPos:i]})
		}
		end := strings.IndexByte(content[i:], '}')
		if end < 0 {
			return nil, diag.ParseError(lineNum, "mismatched braces in print template")
		}
		end += i
		segs = append(segs, program.PrintSegment{Literal: false, Text: content[i+1 : end]})
		lastPos = end + 1
		i = lastPos
	}
	if lastPos < len(content) {
		segs = append(segs, program.PrintSegment{Literal: true, Text: content[lastPos:]})
	}
	return segs, nil
}
