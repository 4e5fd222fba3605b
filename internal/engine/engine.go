// Package engine implements Mite's tree-walking execution engine (spec
// §4.6-§4.8): the frame/stack machinery, the per-statement dispatch loop,
// value resolution, and function/method/static call routing. It is the
// runtime half of the parser/linker pair described in §1.
package engine

import (
	"fmt"

	"github.com/mitescript/mite/internal/diag"
	"github.com/mitescript/mite/internal/host"
	"github.com/mitescript/mite/internal/program"
	"github.com/mitescript/mite/internal/value"
)

// Host is the three-callback contract a script's print/input/exec
// statements drive (spec §6 "Host embedding surface"). Distinct from
// value.Foreign, which is the per-object get/set/call contract.
type Host interface {
	Print(text string)
	Input(name string) (string, error)
	Command(name string, args []string) (bool, error)
}

// returnTarget mirrors the original's Option<String> return-target stack
// entry: a call may or may not have somewhere to write its result.
type returnTarget struct {
	name string
	has  bool
}

// Engine owns every piece of state §4.6 lists: the compiled Program, the
// global map, the frame stack (bottom frame is the module-level scope),
// the five runtime stacks plus its namespace-backup stack, the
// instruction counter/budget, and the sandbox/permission configuration
// the static stdlib dispatch consults.
type Engine struct {
	prog    *program.Program
	globals map[string]value.Value
	frames  []map[string]value.Value

	callStack   []int
	tryStack    []int
	retStack    []returnTarget
	argStack    [][]value.Value
	nsStack     []string
	nsBackup    [][]string

	instrCount uint64
	maxInstr   uint64 // 0 means unlimited, matching the original's sentinel

	sandboxRoot string
	perms       host.Permissions

	host Host
}

// New builds an Engine ready to Run prog. A zero-value Host is never
// supplied by the caller; pkg/mite passes its own default Host when the
// embedder supplies none.
func New(prog *program.Program, h Host) *Engine {
	return &Engine{
		prog:    prog,
		globals: map[string]value.Value{},
		frames:  []map[string]value.Value{{}},
		host:    h,
	}
}

// SetBudget sets the instruction budget; 0 means unlimited, matching §5's
// "optionally unlimited" host-controlled cancellation model.
func (e *Engine) SetBudget(n uint64) { e.maxInstr = n }

// SetSandbox configures the sandbox root the io static module resolves
// paths against.
func (e *Engine) SetSandbox(root string) { e.sandboxRoot = root }

// SetPermissions configures the io static module's read/write/delete/
// allow-no-sandbox flags.
func (e *Engine) SetPermissions(p host.Permissions) { e.perms = p }

// SetGlobal injects a named global, used by embedders to pass in
// configuration before Run (spec §6 "Inject/read named globals").
func (e *Engine) SetGlobal(name string, v value.Value) {
	e.globals[e.namespacedKey(name)] = v
}

// GetValue is the host-facing read (§4.7's get_value): top frame then
// globals only, no namespaced fallback.
func (e *Engine) GetValue(name string) (value.Value, bool) {
	if v, ok := e.frames[len(e.frames)-1][name]; ok {
		return v, true
	}
	v, ok := e.globals[name]
	return v, ok
}

func (e *Engine) namespacedKey(name string) string {
	if len(e.nsStack) == 0 {
		return name
	}
	prefix := ""
	for i, p := range e.nsStack {
		if i > 0 {
			prefix += "."
		}
		prefix += p
	}
	return prefix + "." + name
}

// Run drives the fetch-dispatch-jump loop of §4.6: while PC is in range,
// check the budget, dispatch the statement at PC, and either jump or
// advance by one. A step error routes through the try stack if one is
// open; otherwise it propagates to the caller with its source line
// attached.
func (e *Engine) Run() error {
	pc := 0
	for pc < e.prog.Len() {
		if e.maxInstr > 0 {
			e.instrCount++
			if e.instrCount > e.maxInstr {
				return diag.BudgetError(e.lineOf(pc),
					"Execution Limit Exceeded: Stopped after %d instructions.", e.maxInstr)
			}
		}

		stmt := e.prog.Statements[pc]
		jumped, next, err := e.step(pc, &stmt)
		if err != nil {
			line := e.lineOf(pc)
			derr, ok := err.(*diag.Error)
			if !ok {
				derr = diag.RuntimeError(line, "%s", err)
			}
			if derr.Kind != diag.Budget && len(e.tryStack) > 0 {
				catchPC := e.tryStack[len(e.tryStack)-1]
				e.tryStack = e.tryStack[:len(e.tryStack)-1]
				e.globals["LAST_ERROR"] = value.StringOf(fmt.Sprintf("Error [Line %d]: %s", line, derr.Err))
				pc = catchPC
				continue
			}
			return derr
		}
		if jumped {
			pc = next
		} else {
			pc++
		}
	}
	return nil
}

func (e *Engine) lineOf(pc int) int {
	if pc < 0 || pc >= len(e.prog.Lines) {
		return 0
	}
	return e.prog.Lines[pc]
}

func (e *Engine) topFrame() map[string]value.Value {
	return e.frames[len(e.frames)-1]
}

func (e *Engine) currentNamespace() string {
	if len(e.nsStack) == 0 {
		return ""
	}
	prefix := e.nsStack[0]
	for _, p := range e.nsStack[1:] {
		prefix += "." + p
	}
	return prefix
}
