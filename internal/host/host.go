// Package host implements the static/method stdlib surface a running
// script calls into: math/rand/json/os/io static modules (spec §4.10) and
// the per-Kind instance methods Vector/Map/Tuple/String/Time/Foreign
// values support (spec §4.9).
package host

// Permissions gates the io static module's filesystem operations (spec
// §6 "Sandbox and permission model"). AllowNoSandbox mirrors the
// original's --unsafe-no-sandbox escape hatch: when set, SandboxRoot is
// never consulted and paths are used as given.
type Permissions struct {
	Read           bool
	Write          bool
	Delete         bool
	AllowNoSandbox bool
}
