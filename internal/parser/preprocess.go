// Package parser implements the single-pass line-oriented parser/linker of
// spec §4.5: it lowers preprocessed source text into a *program.Program,
// resolving labels and filling the bidirectional jump map as it goes.
package parser

import "strings"

// logicalLine is one line of input after triple-quoted multi-line string
// literals have been merged back into a single logical line.
type logicalLine struct {
	num  int // 1-based source line the logical line STARTS on
	text string
}

// preprocess merges a line whose trimmed form opens a triple-quoted span
// (ends with "'''" with nothing else trailing) with every following raw
// line, up to and including the line that closes the span, into one
// logical line joined by '\n'. This mirrors merge_multiline_lines exactly,
// including its quirk of only recognizing an *opening* `'''` that is not
// immediately self-closed on the same raw line.
func preprocess(source string) []logicalLine {
	var out []logicalLine
	var buf strings.Builder
	inMultiline := false
	startLine := 0

	rawLines := strings.Split(source, "\n")
	for i, line := range rawLines {
		lineNum := i + 1
		if inMultiline {
			buf.WriteByte('\n')
			buf.WriteString(line)
			if strings.HasSuffix(strings.TrimSpace(line), "'''") {
				out = append(out, logicalLine{num: startLine, text: buf.String()})
				buf.Reset()
				inMultiline = false
			}
			continue
		}
		if idx := strings.Index(line, "'''"); idx >= 0 {
			after := line[idx+3:]
			if strings.TrimSpace(after) == "" {
				inMultiline = true
				startLine = lineNum
				buf.WriteString(line)
				continue
			}
		}
		out = append(out, logicalLine{num: lineNum, text: line})
	}
	if buf.Len() > 0 {
		out = append(out, logicalLine{num: startLine, text: buf.String()})
	}
	return out
}

// stripComment strips a "#"-introduced comment at the first '#', outside
// any awareness of quoting. This is a deliberate bug-compatible choice: the
// original implementation splits on the first '#' unconditionally, so a
// '#' inside a single-quoted string truncates the line. See DESIGN.md.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return strings.TrimSpace(line[:idx])
	}
	return strings.TrimSpace(line)
}

func stripLegacyAssign(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "=") {
		return strings.TrimSpace(s[1:])
	}
	return s
}
