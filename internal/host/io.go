package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitescript/mite/internal/value"
)

// resolveSafePath implements the sandbox path resolution rule: absolute
// paths are always rejected in sandbox mode, the candidate must resolve
// (via its parent directory) to somewhere underneath the canonicalized
// sandbox root, and AllowNoSandbox bypasses all of this entirely.
func resolveSafePath(root, path string, allowNoSandbox bool) (string, error) {
	if allowNoSandbox {
		return path, nil
	}
	if root == "" {
		return "", fmt.Errorf("sandbox path not configured")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("security violation: absolute paths are not allowed in sandbox mode")
	}
	candidate := filepath.Join(root, path)
	parent := filepath.Dir(candidate)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", fmt.Errorf("directory does not exist or access denied: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("directory does not exist or access denied: %w", err)
	}
	if !strings.HasPrefix(realParent, realRoot) {
		return "", fmt.Errorf("security violation: path traversal detected")
	}
	return filepath.Join(realParent, filepath.Base(candidate)), nil
}

func requirePerm(allowed bool, action string) error {
	if !allowed {
		return fmt.Errorf("security violation: %s permission denied", action)
	}
	return nil
}

func recheckSymlink(root, resolved string, allowNoSandbox bool) error {
	if allowNoSandbox {
		return nil
	}
	real, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		return fmt.Errorf("file not found")
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("file not found")
	}
	if !strings.HasPrefix(real, realRoot) && !allowNoSandbox {
		return fmt.Errorf("security violation: path traversal detected via symlink")
	}
	return nil
}

// callIO implements the io static module's five operations (spec §4.10,
// §6 sandbox model): each checks its specific permission flag, resolves
// the path against the sandbox, performs the operation, then — for read
// and delete — re-checks the resolved path didn't traverse a symlink
// planted after the first check.
func callIO(method string, args []value.Value, sandboxRoot string, perms Permissions) (value.Value, error) {
	switch method {
	case "write", "append":
		filename, content, err := writeArgs(method, args)
		if err != nil {
			return value.Value{}, err
		}
		if err := requirePerm(perms.Write, "write"); err != nil {
			return value.Value{}, err
		}
		path, err := resolveSafePath(sandboxRoot, filename, perms.AllowNoSandbox)
		if err != nil {
			return value.Value{}, err
		}
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if method == "append" {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			return value.Value{}, fmt.Errorf("write failed: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return value.Value{}, fmt.Errorf("write failed: %w", err)
		}
		return value.BoolOf(true), nil

	case "read":
		filename, err := filenameArg(method, args)
		if err != nil {
			return value.Value{}, err
		}
		if err := requirePerm(perms.Read, "read"); err != nil {
			return value.Value{}, err
		}
		path, err := resolveSafePath(sandboxRoot, filename, perms.AllowNoSandbox)
		if err != nil {
			return value.Value{}, err
		}
		if err := recheckSymlink(sandboxRoot, path, perms.AllowNoSandbox); err != nil {
			return value.Value{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return value.Value{}, fmt.Errorf("read failed: %w", err)
		}
		return value.StringOf(string(data)), nil

	case "exists":
		filename, err := filenameArg(method, args)
		if err != nil {
			return value.Value{}, err
		}
		path, err := resolveSafePath(sandboxRoot, filename, perms.AllowNoSandbox)
		if err != nil {
			return value.BoolOf(false), nil
		}
		_, statErr := os.Stat(path)
		return value.BoolOf(statErr == nil), nil

	case "delete":
		filename, err := filenameArg(method, args)
		if err != nil {
			return value.Value{}, err
		}
		if err := requirePerm(perms.Delete, "delete"); err != nil {
			return value.Value{}, err
		}
		path, err := resolveSafePath(sandboxRoot, filename, perms.AllowNoSandbox)
		if err != nil {
			return value.Value{}, err
		}
		if err := recheckSymlink(sandboxRoot, path, perms.AllowNoSandbox); err != nil {
			return value.Value{}, err
		}
		if err := os.Remove(path); err != nil {
			return value.Value{}, fmt.Errorf("delete failed: %w", err)
		}
		return value.BoolOf(true), nil

	default:
		return value.Value{}, fmt.Errorf("unknown method %q for io module", method)
	}
}

func writeArgs(method string, args []value.Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("io.%s expects 2 arguments (filename, content)", method)
	}
	return args[0].Display(), args[1].Display(), nil
}

func filenameArg(method string, args []value.Value) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("io.%s expects 1 argument (filename)", method)
	}
	return args[0].Display(), nil
}
