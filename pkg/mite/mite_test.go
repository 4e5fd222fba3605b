package mite

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/mitescript/mite/internal/value"
)

func TestRunBudgetExceededStopsRuntimeLoop(t *testing.T) {
	src := `
counter = 0
while true [
counter += 1
]
`
	rt, err := New(src, WithBudget(100))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = rt.Run()
	if err == nil {
		t.Fatal("expected a budget error, got nil")
	}
	if !strings.Contains(err.Error(), "Execution Limit Exceeded") {
		t.Errorf("expected message to mention the execution limit, got: %v", err)
	}
	if !IsBudgetExceeded(err) {
		t.Errorf("expected IsBudgetExceeded to report true for: %v", err)
	}
}

func TestRunInjectedGlobalsAndPrintTemplate(t *testing.T) {
	var out bytes.Buffer
	src := `
print 'Hello, {USER}!'
result_val USER_ID * 2
`
	rt, err := New(src, WithOutput(&out))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rt.SetGlobal("USER", value.StringOf("Tester"))
	rt.SetGlobal("USER_ID", value.IntOf(21))

	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Hello, Tester!") {
		t.Errorf("expected greeting in output, got: %q", out.String())
	}
	v, ok := rt.GetValue("result_val")
	if !ok {
		t.Fatal("expected result_val to be set")
	}
	if v.I != 42 {
		t.Errorf("expected result_val == 42, got %v", v.I)
	}
}

func TestRunUnlimitedBudgetLoopCompletes(t *testing.T) {
	src := `
i = 0
while i < 2000 [
i += 1
]
`
	rt, err := New(src, WithUnlimitedBudget())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, ok := rt.GetValue("i")
	if !ok || v.I != 2000 {
		t.Errorf("expected i == 2000, got %v (found=%v)", v, ok)
	}
}

func TestRunModuleFunctionCall(t *testing.T) {
	src := `
module M [
function f x [
doubled x * 2
return doubled
]
]
r = M.f(21)
`
	rt, err := New(src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	v, ok := rt.GetValue("r")
	if !ok || v.I != 42 {
		t.Errorf("expected r == 42, got %v (found=%v)", v, ok)
	}
}

// heroFixture is the "GameCharacter" interop fixture used across spec
// scenario 5: name/hp/max_hp fields plus heal/take_damage/is_alive.
type heroFixture struct {
	name  string
	hp    int32
	maxHP int32
}

func (h *heroFixture) TypeName() string { return "GameCharacter" }

func (h *heroFixture) Get(field string) (value.Value, bool, error) {
	switch field {
	case "name":
		return value.StringOf(h.name), true, nil
	case "hp":
		return value.IntOf(h.hp), true, nil
	case "max_hp":
		return value.IntOf(h.maxHP), true, nil
	default:
		return value.Value{}, false, nil
	}
}

func (h *heroFixture) Set(field string, v value.Value) error {
	switch field {
	case "name":
		h.name = v.Display()
		return nil
	case "hp":
		f, ok := v.AsFloat()
		if !ok {
			return fmt.Errorf("hp must be a number")
		}
		h.hp = int32(f)
		return nil
	default:
		return fmt.Errorf("field %q is read-only or does not exist", field)
	}
}

func (h *heroFixture) Call(method string, args []value.Value) (value.Value, bool, error) {
	switch method {
	case "heal":
		amount, _ := args[0].AsFloat()
		h.hp += int32(amount)
		if h.hp > h.maxHP {
			h.hp = h.maxHP
		}
		return value.IntOf(h.hp), true, nil
	case "take_damage":
		amount, _ := args[0].AsFloat()
		h.hp -= int32(amount)
		if h.hp < 0 {
			h.hp = 0
		}
		return value.IntOf(h.hp), true, nil
	case "is_alive":
		return value.BoolOf(h.hp > 0), true, nil
	default:
		return value.Value{}, false, fmt.Errorf("method %q not implemented", method)
	}
}

func TestRunForeignHeroScenario(t *testing.T) {
	src := `
hero.name = 'Super'
new_hp = hero.heal(20)
hero.take_damage(60)
alive = hero.is_alive()
`
	rt, err := New(src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rt.RegisterForeign("hero", &heroFixture{name: "Warrior", hp: 50, maxHP: 100})

	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	newHP, ok := rt.GetValue("new_hp")
	if !ok || newHP.I != 70 {
		t.Errorf("expected new_hp == 70, got %v (found=%v)", newHP, ok)
	}
	alive, ok := rt.GetValue("alive")
	if !ok || !alive.B {
		t.Errorf("expected alive == true, got %v (found=%v)", alive, ok)
	}
}

func TestRunTryCatchDivisionByZero(t *testing.T) {
	var out bytes.Buffer
	src := `
try [
x 1 / 0
] catch [
print 'caught: {LAST_ERROR}'
]
`
	rt, err := New(src, WithOutput(&out))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := rt.Run(); err != nil {
		t.Fatalf("expected the try/catch to swallow the error, got: %v", err)
	}
	if !strings.Contains(out.String(), "caught:") || !strings.Contains(out.String(), "[Line") {
		t.Errorf("expected a formatted caught message with a line number, got: %q", out.String())
	}
	if !strings.Contains(strings.ToLower(out.String()), "division by zero") {
		t.Errorf("expected the caught message to mention division by zero, got: %q", out.String())
	}
}
