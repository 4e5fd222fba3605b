package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestResolveSingleFileNoImports(t *testing.T) {
	dir := t.TempDir()
	entry := writeTemp(t, dir, "main.mite", "print \"hello\"\n")

	out, err := Resolve(entry)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.Contains(out, "BEGIN IMPORT: main.mite") {
		t.Errorf("expected BEGIN marker, got: %s", out)
	}
	if !strings.Contains(out, "print \"hello\"") {
		t.Errorf("expected original content preserved, got: %s", out)
	}
}

func TestResolvePlainImport(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "lib.mite", "global x = 1\n")
	entry := writeTemp(t, dir, "main.mite", "import 'lib.mite'\nprint x\n")

	out, err := Resolve(entry)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.Contains(out, "BEGIN IMPORT: lib.mite") {
		t.Errorf("expected lib.mite to be inlined, got: %s", out)
	}
	if strings.Contains(out, "module ") {
		t.Errorf("unaliased import should not produce a module wrapper, got: %s", out)
	}
}

func TestResolveAliasedImportWrapsInModule(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "math.mite", "global pi = 3\n")
	entry := writeTemp(t, dir, "main.mite", "import \"math.mite\" as mathlib\n")

	out, err := Resolve(entry)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.Contains(out, "module mathlib [") {
		t.Errorf("expected synthetic module wrapper, got: %s", out)
	}
}

func TestResolveUnquotedImportPathErrors(t *testing.T) {
	dir := t.TempDir()
	entry := writeTemp(t, dir, "main.mite", "import lib.mite\n")

	if _, err := Resolve(entry); err == nil {
		t.Fatal("expected an error for an unquoted import path")
	}
}

func TestResolveMissingImportErrors(t *testing.T) {
	dir := t.TempDir()
	entry := writeTemp(t, dir, "main.mite", "import 'missing.mite'\n")

	if _, err := Resolve(entry); err == nil {
		t.Fatal("expected an error for a missing import target")
	}
}

func TestResolveCycleGuardStopsReimport(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "a.mite", "import 'b.mite'\nglobal a = 1\n")
	writeTemp(t, dir, "b.mite", "import 'a.mite'\nglobal b = 2\n")
	entry := writeTemp(t, dir, "main.mite", "import 'a.mite'\n")

	out, err := Resolve(entry)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if strings.Count(out, "BEGIN IMPORT: a.mite") != 1 {
		t.Errorf("expected a.mite to be inlined exactly once, got: %s", out)
	}
}

func TestResolveEntryNotFound(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "nope.mite")); err == nil {
		t.Fatal("expected an error for a nonexistent entry file")
	}
}
