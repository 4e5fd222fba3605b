// Package importer implements the recursive text-level import
// preprocessor spec.md §6 lists as a surface concern (the "import"
// keyword) while leaving its own recursive file-walking out of scope as
// an external collaborator. Mite still needs something to turn "import"
// lines into concatenated source before the parser ever sees them, so
// this package supplies a minimal recursive version: a visited-set
// cycle guard, BEGIN/END IMPORT markers, and synthetic "module NAME [ ...
// ]" wrappers for aliased imports.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve reads entryPath and recursively inlines every "import" line it
// finds, returning the fully concatenated source ready for the parser.
func Resolve(entryPath string) (string, error) {
	if _, err := os.Stat(entryPath); err != nil {
		return "", fmt.Errorf("entry file not found: %s", entryPath)
	}
	canonical, err := filepath.Abs(entryPath)
	if err != nil {
		return "", fmt.Errorf("error resolving path %s: %w", entryPath, err)
	}
	canonical, err = filepath.EvalSymlinks(canonical)
	if err != nil {
		return "", fmt.Errorf("error resolving path %s: %w", entryPath, err)
	}
	visited := map[string]bool{}
	return resolveRecursive(canonical, visited)
}

func resolveRecursive(currentPath string, visited map[string]bool) (string, error) {
	if visited[currentPath] {
		return "", nil
	}
	visited[currentPath] = true

	content, err := os.ReadFile(currentPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", currentPath, err)
	}

	fileName := filepath.Base(currentPath)
	var out strings.Builder
	fmt.Fprintf(&out, "\n# --- BEGIN IMPORT: %s ---\n", fileName)

	lines := strings.Split(string(content), "\n")
	// Splitting on a trailing newline adds a phantom empty final line;
	// drop it so the END marker below doesn't duplicate a blank line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for lineNum, line := range lines {
		trimmed := strings.TrimSpace(strings.SplitN(line, "#", 2)[0])
		isImport := strings.HasPrefix(trimmed, "import ") ||
			strings.HasPrefix(trimmed, "import=") ||
			trimmed == "import"

		if !isImport {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		relPath, alias, err := parseImportLine(trimmed, lineNum+1)
		if err != nil {
			return "", err
		}

		parentDir := filepath.Dir(currentPath)
		targetPath := filepath.Join(parentDir, relPath)
		if _, err := os.Stat(targetPath); err != nil {
			return "", fmt.Errorf("import not found: '%s' in %s", relPath, currentPath)
		}
		absTarget, err := filepath.Abs(targetPath)
		if err != nil {
			return "", fmt.Errorf("path resolution error: %w", err)
		}
		absTarget, err = filepath.EvalSymlinks(absTarget)
		if err != nil {
			return "", fmt.Errorf("path resolution error: %w", err)
		}

		imported, err := resolveRecursive(absTarget, visited)
		if err != nil {
			return "", err
		}

		if alias != "" {
			fmt.Fprintf(&out, "\nmodule %s [\n", alias)
			out.WriteString(imported)
			out.WriteString("\n]\n")
		} else {
			out.WriteString(imported)
		}
		out.WriteByte('\n')
	}

	fmt.Fprintf(&out, "\n# --- END IMPORT: %s ---\n", fileName)
	return out.String(), nil
}

// parseImportLine pulls the quoted path and optional " as alias" suffix
// out of an already-comment-stripped, already-trimmed import line.
func parseImportLine(line string, lineNum int) (path, alias string, err error) {
	rawArgs := line
	switch {
	case strings.HasPrefix(line, "import="):
		rawArgs = strings.TrimSpace(line[len("import="):])
	case strings.HasPrefix(line, "import"):
		rawArgs = strings.TrimSpace(line[len("import"):])
	}
	rawArgs = strings.TrimPrefix(rawArgs, "=")
	rawArgs = strings.TrimSpace(rawArgs)

	valuePart := rawArgs
	if idx := strings.LastIndex(valuePart, " as "); idx >= 0 {
		candidate := strings.TrimSpace(valuePart[idx+len(" as "):])
		if candidate != "" && isAliasToken(candidate) {
			alias = candidate
			valuePart = strings.TrimSpace(valuePart[:idx])
		}
	}

	if len(valuePart) >= 2 {
		if (strings.HasPrefix(valuePart, "'") && strings.HasSuffix(valuePart, "'")) ||
			(strings.HasPrefix(valuePart, `"`) && strings.HasSuffix(valuePart, `"`)) {
			return valuePart[1 : len(valuePart)-1], alias, nil
		}
	}
	return "", "", fmt.Errorf("line %d: import path must be quoted", lineNum)
}

func isAliasToken(s string) bool {
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
