package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitescript/mite/internal/value"
)

func TestCallStaticRoutesToEachModule(t *testing.T) {
	v, err := CallStatic("math", "sqrt", []value.Value{value.IntOf(9)}, "", Permissions{})
	if err != nil || v.F != 3 {
		t.Errorf("math.sqrt(9): got %v, err=%v", v, err)
	}

	v, err = CallStatic("rand", "bool", nil, "", Permissions{})
	if err != nil || v.Kind != value.Bool {
		t.Errorf("rand.bool(): got %v, err=%v", v, err)
	}

	v, err = CallStatic("json", "stringify", []value.Value{value.IntOf(7)}, "", Permissions{})
	if err != nil || v.S != "7" {
		t.Errorf("json.stringify(7): got %v, err=%v", v, err)
	}

	if _, err := CallStatic("os", "exec", []value.Value{value.StringOf("echo hi")}, "", Permissions{}); err == nil {
		t.Error("expected the 'os' module to stay permanently disabled")
	}

	if _, err := CallStatic("nonexistent", "m", nil, "", Permissions{}); err == nil {
		t.Error("expected an error for an unknown static module")
	}
}

func TestCallStaticIOWriteReadRoundTripsThroughSandbox(t *testing.T) {
	root := t.TempDir()
	perms := Permissions{Read: true, Write: true}

	if _, err := CallStatic("io", "write", []value.Value{value.StringOf("note.txt"), value.StringOf("hello")}, root, perms); err != nil {
		t.Fatalf("io.write failed: %v", err)
	}
	v, err := CallStatic("io", "read", []value.Value{value.StringOf("note.txt")}, root, perms)
	if err != nil || v.S != "hello" {
		t.Fatalf("io.read: got %v, err=%v", v, err)
	}
	if _, err := os.Stat(filepath.Join(root, "note.txt")); err != nil {
		t.Fatalf("expected the file to exist under the sandbox root: %v", err)
	}
}

func TestCallStaticIORejectsAbsolutePathAndMissingPermission(t *testing.T) {
	root := t.TempDir()

	_, err := CallStatic("io", "read", []value.Value{value.StringOf("/etc/passwd")}, root, Permissions{Read: true})
	if err == nil || !strings.Contains(err.Error(), "security violation") {
		t.Errorf("expected a sandbox security violation for an absolute path, got %v", err)
	}

	_, err = CallStatic("io", "write", []value.Value{value.StringOf("x.txt"), value.StringOf("y")}, root, Permissions{})
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("expected a permission-denied error when Write is false, got %v", err)
	}
}

func TestCallStaticIOAllowNoSandboxBypassesRootCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "escaped.txt")
	perms := Permissions{Write: true, Read: true, AllowNoSandbox: true}

	if _, err := CallStatic("io", "write", []value.Value{value.StringOf(path), value.StringOf("data")}, "", perms); err != nil {
		t.Fatalf("expected AllowNoSandbox to bypass the sandbox root, got %v", err)
	}
	v, err := CallStatic("io", "read", []value.Value{value.StringOf(path)}, "", perms)
	if err != nil || v.S != "data" {
		t.Fatalf("expected to read back the written file, got %v, err=%v", v, err)
	}
}
