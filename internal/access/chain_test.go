package access

import (
	"fmt"
	"testing"

	"github.com/mitescript/mite/internal/value"
)

type constResolver map[string]value.Value

func (r constResolver) Resolve(token string) (value.Value, error) {
	if v, ok := r[token]; ok {
		return v, nil
	}
	return value.Value{}, fmt.Errorf("unresolved token %q", token)
}

func TestLooksRequiresIdentStartAndDotOrBracket(t *testing.T) {
	cases := map[string]bool{
		"":         false,
		"1.field":  false,
		"plain":    false,
		"obj.name": true,
		"vec[0]":   true,
		".leading": false,
	}
	for in, want := range cases {
		if got := Looks(in); got != want {
			t.Errorf("Looks(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseMixedDotAndBracketChain(t *testing.T) {
	c, err := Parse("root.items[1].name")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Root != "root" {
		t.Fatalf("expected root %q, got %q", "root", c.Root)
	}
	if len(c.Ops) != 3 {
		t.Fatalf("expected 3 ops, got %d: %+v", len(c.Ops), c.Ops)
	}
	if c.Ops[0].Kind != Dot || c.Ops[0].Name != "items" {
		t.Errorf("op0 = %+v", c.Ops[0])
	}
	if c.Ops[1].Kind != Bracket || c.Ops[1].Expr != "1" {
		t.Errorf("op1 = %+v", c.Ops[1])
	}
	if c.Ops[2].Kind != Dot || c.Ops[2].Name != "name" {
		t.Errorf("op2 = %+v", c.Ops[2])
	}
}

func TestParseRejectsMissingRootAndUnbalancedBracket(t *testing.T) {
	if _, err := Parse(".oops"); err == nil {
		t.Error("expected an error for a chain with no root identifier")
	}
	if _, err := Parse("vec[0"); err == nil {
		t.Error("expected an error for an unbalanced '['")
	}
}

func TestEvalWalksVectorAndMapChain(t *testing.T) {
	root := value.MapOf(map[string]value.Value{
		"items": value.VectorOf([]value.Value{value.IntOf(10), value.IntOf(20)}),
	})
	c, err := Parse("root.items[1]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, err := Eval(root, c.Ops, constResolver{"1": value.IntOf(1)})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if got.I != 20 {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestEvalReportsMissingMapKeyAndOutOfBoundsIndex(t *testing.T) {
	root := value.MapOf(map[string]value.Value{"a": value.IntOf(1)})
	c, _ := Parse("root.missing")
	if _, err := Eval(root, c.Ops, constResolver{}); err == nil {
		t.Error("expected an error for a missing map key")
	}

	vec := value.VectorOf([]value.Value{value.IntOf(1)})
	c2, _ := Parse("root[5]")
	if _, err := Eval(vec, c2.Ops, constResolver{"5": value.IntOf(5)}); err == nil {
		t.Error("expected an error for an out-of-bounds index")
	}
}

func TestMutateWritesThroughNestedVectorInMap(t *testing.T) {
	root := value.MapOf(map[string]value.Value{
		"items": value.VectorOf([]value.Value{value.IntOf(1), value.IntOf(2)}),
	})
	c, err := Parse("root.items[0]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Mutate(&root, c.Ops, value.IntOf(99), constResolver{"0": value.IntOf(0)}); err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	got := root.MapVal["items"].Vec[0]
	if got.I != 99 {
		t.Errorf("expected items[0] == 99 after mutation, got %v", got)
	}
}

func TestMutateCreatesMapWhenNil(t *testing.T) {
	var empty value.Value
	empty.Kind = value.Map
	c, _ := Parse("root.k")
	if err := Mutate(&empty, c.Ops, value.IntOf(1), constResolver{}); err != nil {
		t.Fatalf("Mutate into a nil map failed: %v", err)
	}
	if empty.MapVal["k"].I != 1 {
		t.Errorf("expected k == 1, got %v", empty.MapVal["k"])
	}
}

type rejectForeign struct{}

func (rejectForeign) TypeName() string                      { return "Rejecting" }
func (rejectForeign) Get(string) (value.Value, bool, error) { return value.Value{}, false, nil }
func (rejectForeign) Set(string, value.Value) error         { return nil }
func (rejectForeign) Call(string, []value.Value) (value.Value, bool, error) {
	return value.Value{}, false, nil
}

func TestMutateRejectsNonTerminalForeignWrite(t *testing.T) {
	root := value.MapOf(map[string]value.Value{
		"obj": value.ForeignOf(value.NewHandle(rejectForeign{})),
	})
	c, err := Parse("root.obj.inner.deep")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Mutate(&root, c.Ops, value.IntOf(1), constResolver{}); err == nil {
		t.Error("expected an error mutating a non-terminal Foreign property")
	}
}
