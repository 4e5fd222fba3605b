package mite

import (
	"io"

	"github.com/mitescript/mite/internal/host"
)

// Host is the three-callback embedding surface a script's print/input/
// exec statements drive (spec.md §6). Implement it to capture output,
// supply input, or handle host commands; the zero value (via WithOutput
// alone) gets a Runtime that writes print() to the configured writer and
// fails input()/exec() with an error, which Run reports as a RuntimeError
// (host failures are not classified as HostError).
type Host interface {
	Print(text string)
	Input(name string) (string, error)
	Command(name string, args []string) (bool, error)
}

type config struct {
	budget         uint64
	sandbox        string
	read           bool
	write          bool
	delete         bool
	allowNoSandbox bool
	host           Host
	out            io.Writer
}

// Option configures a Runtime, following the functional-options shape
// used throughout the rest of this module's ambient stack.
type Option func(*config)

// WithBudget sets the instruction budget (spec.md §5); 0, the default,
// means unlimited.
func WithBudget(n uint64) Option {
	return func(c *config) { c.budget = n }
}

// WithUnlimitedBudget disables the instruction budget entirely,
// equivalent to WithBudget(0) but more legible at call sites that mirror
// the CLI's --unlimited flag.
func WithUnlimitedBudget() Option {
	return func(c *config) { c.budget = 0 }
}

// WithSandbox sets the root directory the io static module resolves
// relative paths against.
func WithSandbox(root string) Option {
	return func(c *config) { c.sandbox = root }
}

// WithPermissions sets the io static module's read/write/delete flags and
// whether sandboxing is bypassed entirely (spec.md §6 CLI surface).
func WithPermissions(read, write, delete, allowNoSandbox bool) Option {
	return func(c *config) {
		c.read, c.write, c.delete, c.allowNoSandbox = read, write, delete, allowNoSandbox
	}
}

// WithHost installs the print/input/exec callback handler.
func WithHost(h Host) Option {
	return func(c *config) { c.host = h }
}

// WithOutput directs the default Host's print() calls at w. Ignored if
// WithHost is also given.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

func (c *config) permissions() host.Permissions {
	return host.Permissions{
		Read:           c.read,
		Write:          c.write,
		Delete:         c.delete,
		AllowNoSandbox: c.allowNoSandbox,
	}
}
