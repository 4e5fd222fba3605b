package parser

import (
	"strings"

	"github.com/mitescript/mite/internal/diag"
	"github.com/mitescript/mite/internal/program"
)

// Parse lowers source text into a linked *program.Program, mirroring
// parse_source's main loop: preprocess, then for each logical line strip
// comments, handle a leading "]" block close, parse the remaining text into
// one statement, namespace-qualify Label/FunctionDef names, register
// labels, link control flow, emit, and handle a trailing "[" block open.
func Parse(source string) (*program.Program, error) {
	st := newState()
	lines := preprocess(source)

	for _, ll := range lines {
		trimmed := stripComment(ll.text)
		if trimmed == "" {
			continue
		}

		stmtStr := trimmed
		isBlockEnd := false
		if strings.HasPrefix(trimmed, "]") {
			stmtStr = strings.TrimSpace(trimmed[1:])
			isBlockEnd = true
		}

		if isBlockEnd {
			if err := st.handleBlockClose(ll.num); err != nil {
				return nil, err
			}
		}

		if stmtStr == "" {
			continue
		}

		isBlockStart := false
		if strings.HasSuffix(stmtStr, "[") {
			stmtStr = strings.TrimSpace(stmtStr[:len(stmtStr)-1])
			isBlockStart = true
		}

		if stmtStr == "" {
			continue
		}

		stmt, err := parseLine(ll.num, stmtStr)
		if err != nil {
			return nil, err
		}

		if ns := st.activeNamespace(); ns != "" {
			switch stmt.Kind {
			case program.Label, program.FunctionDef:
				stmt.Name = ns + "." + stmt.Name
			}
		}

		if stmt.Kind == program.Label || stmt.Kind == program.FunctionDef {
			if _, dup := st.prog.Labels[stmt.Name]; dup {
				return nil, diag.LinkError(ll.num, "duplicate label/function name %q", stmt.Name)
			}
			st.prog.Labels[stmt.Name] = st.prog.Len()
		}

		currentIdx := st.prog.Len()

		if err := st.linkControlFlow(ll.num, stmt, currentIdx); err != nil {
			return nil, err
		}

		st.prog.Emit(stmt, ll.num)

		if isBlockStart {
			if err := st.pushBlockStack(ll.num, stmt, currentIdx); err != nil {
				return nil, err
			}
		}
	}

	if len(st.blocks) != 0 {
		return nil, diag.ParseError(0, "unclosed block detected (missing ']')")
	}

	return st.prog, nil
}
