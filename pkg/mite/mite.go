// Package mite is the host embedding surface spec.md §6 describes:
// construct an interpreter from source text, inject/read named globals,
// configure the instruction budget and sandbox, register a Host for
// print/input/exec, and register foreign objects.
package mite

import (
	"fmt"
	"io"
	"os"

	"github.com/mitescript/mite/internal/diag"
	"github.com/mitescript/mite/internal/engine"
	"github.com/mitescript/mite/internal/importer"
	"github.com/mitescript/mite/internal/parser"
	"github.com/mitescript/mite/internal/value"
)

// Runtime is a single, independently-constructible interpreter instance.
// Per spec.md §9 ("Global state"), multiple Runtimes never share state:
// each owns its own globals, budget, and permissions.
type Runtime struct {
	eng *engine.Engine
}

// defaultHost prints to out and refuses input()/exec(); embedders that
// need those supply WithHost instead.
type defaultHost struct{ out io.Writer }

func (h defaultHost) Print(text string) { fmt.Fprint(h.out, text) }

func (h defaultHost) Input(name string) (string, error) {
	return "", fmt.Errorf("no input handler registered for %q", name)
}

func (h defaultHost) Command(name string, args []string) (bool, error) {
	return false, nil
}

// New parses source and returns a Runtime ready to Run.
func New(source string, opts ...Option) (*Runtime, error) {
	cfg := &config{out: os.Stdout}
	for _, opt := range opts {
		opt(cfg)
	}

	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	h := cfg.host
	if h == nil {
		h = defaultHost{out: cfg.out}
	}

	eng := engine.New(prog, h)
	eng.SetBudget(cfg.budget)
	eng.SetSandbox(cfg.sandbox)
	eng.SetPermissions(cfg.permissions())

	return &Runtime{eng: eng}, nil
}

// NewFromFile resolves entryPath through the import preprocessor before
// parsing, so "import" lines are already inlined (spec.md §6 "Persisted
// state": the importer concatenates text before parsing).
func NewFromFile(entryPath string, opts ...Option) (*Runtime, error) {
	source, err := importer.Resolve(entryPath)
	if err != nil {
		return nil, err
	}
	return New(source, opts...)
}

// Run drives the engine to completion or the first uncaught error.
func (r *Runtime) Run() error {
	return r.eng.Run()
}

// SetGlobal injects a named global before Run.
func (r *Runtime) SetGlobal(name string, v value.Value) {
	r.eng.SetGlobal(name, v)
}

// GetValue reads a named global or top-frame local, typically after Run.
func (r *Runtime) GetValue(name string) (value.Value, bool) {
	return r.eng.GetValue(name)
}

// RegisterForeign wraps obj in a guarded Handle and installs it as global
// name, exercising the three-method {get,set,call} contract spec.md §6
// describes.
func (r *Runtime) RegisterForeign(name string, obj value.Foreign) {
	r.eng.SetGlobal(name, value.ForeignOf(value.NewHandle(obj)))
}

// IsBudgetExceeded reports whether err is the BudgetError Run returns
// when the instruction limit was exceeded (spec.md §7, §8).
func IsBudgetExceeded(err error) bool {
	return diag.Is(err, diag.Budget)
}
