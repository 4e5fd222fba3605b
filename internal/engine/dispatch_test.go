package engine

import (
	"fmt"
	"testing"

	"github.com/mitescript/mite/internal/parser"
	"github.com/mitescript/mite/internal/value"
)

type nopHost struct{}

func (nopHost) Print(string)                           {}
func (nopHost) Input(string) (string, error)           { return "", nil }
func (nopHost) Command(string, []string) (bool, error) { return false, nil }

func mustEngine(t *testing.T, src string) *Engine {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return New(prog, nopHost{})
}

// fixtureObj is a minimal Foreign implementation used to exercise the
// natural obj.method(args) FunctionCall dispatch path.
type fixtureObj struct{ count int32 }

func (f *fixtureObj) TypeName() string { return "Fixture" }

func (f *fixtureObj) Get(field string) (value.Value, bool, error) {
	if field == "count" {
		return value.IntOf(f.count), true, nil
	}
	return value.Value{}, false, nil
}

func (f *fixtureObj) Set(field string, v value.Value) error {
	return fmt.Errorf("field %q does not exist", field)
}

func (f *fixtureObj) Call(method string, args []value.Value) (value.Value, bool, error) {
	if method != "bump" {
		return value.Value{}, false, nil
	}
	n, _ := args[0].AsFloat()
	f.count += int32(n)
	return value.IntOf(f.count), true, nil
}

// TestFunctionCallDispatchesToBoundVariableBeforeStaticModule exercises
// the precedence fix: a dotted FunctionCall name whose prefix is a bound
// variable must route through CallMethod, not be mistaken for a label or
// a static module name.
func TestFunctionCallDispatchesToBoundVariableBeforeStaticModule(t *testing.T) {
	eng := mustEngine(t, "r = obj.bump(5)\n")
	eng.SetGlobal("obj", value.ForeignOf(value.NewHandle(&fixtureObj{count: 10})))

	if err := eng.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, ok := eng.GetValue("r")
	if !ok || v.I != 15 {
		t.Errorf("expected r == 15, got %v (found=%v)", v, ok)
	}
}

// TestFunctionCallFallsBackToStaticModuleWhenNameIsNotAVariable confirms
// the fallback path still reaches host.CallStatic when the dotted prefix
// is not bound to anything in scope.
func TestFunctionCallFallsBackToStaticModuleWhenNameIsNotAVariable(t *testing.T) {
	eng := mustEngine(t, "r = math.sqrt(9)\n")
	if err := eng.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, ok := eng.GetValue("r")
	if !ok || v.F != 3 {
		t.Errorf("expected r == 3.0, got %v (found=%v)", v, ok)
	}
}

func TestFunctionCallToModuleLabelTakesPrecedenceOverVariableLookup(t *testing.T) {
	src := `
module M [
function f x [
doubled x * 2
return doubled
]
]
r = M.f(21)
`
	eng := mustEngine(t, src)
	if err := eng.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, ok := eng.GetValue("r")
	if !ok || v.I != 42 {
		t.Errorf("expected r == 42, got %v (found=%v)", v, ok)
	}
}

func TestFunctionCallUnknownDottedNameErrors(t *testing.T) {
	eng := mustEngine(t, "r = nothing.here(1)\n")
	if err := eng.Run(); err == nil {
		t.Fatal("expected an error calling an unbound, unlabeled dotted name")
	}
}

func TestBudgetExceededStopsRun(t *testing.T) {
	eng := mustEngine(t, "counter = 0\nwhile true [\ncounter += 1\n]\n")
	eng.SetBudget(50)
	if err := eng.Run(); err == nil {
		t.Fatal("expected a budget error")
	}
}
