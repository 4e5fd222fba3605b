package parser

import (
	"testing"

	"github.com/mitescript/mite/internal/program"
)

func TestParseModuleFunctionRegistersNamespacedLabel(t *testing.T) {
	src := `
module M [
function f x [
doubled x * 2
return doubled
]
]
r = M.f(21)
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := prog.Labels["M.f"]; !ok {
		t.Fatalf("expected a namespaced label %q, got labels: %v", "M.f", prog.Labels)
	}
}

func TestParseAssignmentOrArithmeticPrecedence(t *testing.T) {
	prog, err := Parse("x 1 / 0\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if prog.Len() != 1 || prog.Statements[0].Kind != program.CalcArithmetic {
		t.Fatalf("expected a single CalcArithmetic statement, got %+v", prog.Statements)
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog, err := Parse("counter += 1\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if prog.Len() != 1 || prog.Statements[0].Kind != program.CalcAssignment {
		t.Fatalf("expected a single CalcAssignment statement, got %+v", prog.Statements)
	}
	if prog.Statements[0].Op != "+" {
		t.Errorf("expected op %q, got %q", "+", prog.Statements[0].Op)
	}
}

func TestParseUnclosedBlockErrors(t *testing.T) {
	if _, err := Parse("while true [\nx 1 + 1\n"); err == nil {
		t.Fatal("expected an error for an unclosed block")
	}
}

func TestParseDuplicateLabelErrors(t *testing.T) {
	src := "label dup\nlabel dup\n"
	if _, err := Parse(src); err == nil {
		t.Fatal("expected an error for a duplicate label")
	}
}
