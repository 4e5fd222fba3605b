package engine

import (
	"fmt"
	"strings"

	"github.com/mitescript/mite/internal/access"
	"github.com/mitescript/mite/internal/split"
	"github.com/mitescript/mite/internal/value"
)

// topLevelCommaItems splits a composite literal's body on top-level commas
// and trims whitespace from each item, dropping any that are empty (so a
// trailing comma doesn't produce a phantom element).
func topLevelCommaItems(body string) []string {
	var out []string
	for _, part := range split.TopLevelCommas(body) {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// firstTopLevelColon finds a map item's key/value separator, ignoring any
// ':' nested inside quotes or brackets.
func firstTopLevelColon(item string) int {
	return split.FirstTopLevelIndex(item, ':')
}

// resolveBasicVar looks a bare name up in the top frame, then globals,
// then the namespaced global, per §4.7.
func (e *Engine) resolveBasicVar(token string) (value.Value, bool) {
	if v, ok := e.topFrame()[token]; ok {
		return v, true
	}
	if v, ok := e.globals[token]; ok {
		return v, true
	}
	if ns := e.currentNamespace(); ns != "" {
		if v, ok := e.globals[ns+"."+token]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Resolve implements access.Resolver so resolveVal can drive bracket
// expression resolution inside access.Eval.
func (e *Engine) Resolve(token string) (value.Value, error) {
	return e.resolveVal(token)
}

// resolveVal is the main resolver (§4.7): quote literal, recursive
// composite, bare-identifier lookup, access-chain walk, infer, first-class
// function reference, then failure.
func (e *Engine) resolveVal(tokenRaw string) (value.Value, error) {
	token := strings.TrimSpace(tokenRaw)
	if token == "" {
		return value.Value{}, fmt.Errorf("empty token")
	}

	if strings.HasPrefix(token, "'") {
		return value.Infer(token)
	}
	if token[0] == '{' || token[0] == '(' || token[0] == '[' {
		return e.resolveComplexStructure(token)
	}

	if v, ok := e.resolveBasicVar(token); ok {
		return v, nil
	}

	first := token[0]
	isIdentStart := (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') || first == '_'
	looksLikeChain := strings.ContainsAny(token, ".[") && isIdentStart

	if looksLikeChain {
		chain, err := access.Parse(token)
		if err == nil && len(chain.Ops) > 0 {
			root, ok := e.resolveBasicVar(chain.Root)
			if !ok {
				rv, ierr := value.Infer(chain.Root)
				if ierr != nil {
					return value.Value{}, fmt.Errorf("variable %q not found", chain.Root)
				}
				root = rv
			}
			return access.Eval(root, chain.Ops, e)
		}
	}

	v, inferErr := value.Infer(token)
	if inferErr == nil {
		return v, nil
	}

	if _, ok := e.prog.Labels[token]; ok {
		return value.FunctionOf(token), nil
	}
	if ns := e.currentNamespace(); ns != "" {
		nsKey := ns + "." + token
		if _, ok := e.prog.Labels[nsKey]; ok {
			return value.FunctionOf(nsKey), nil
		}
	}

	if first == '-' || (first >= '0' && first <= '9') {
		return value.Value{}, inferErr
	}
	return value.Value{}, fmt.Errorf("variable or function %q not found", token)
}

// resolveComplexStructure parses a bracketed literal with every item
// re-resolved via resolveVal (not merely inferred), so variable references
// inside composite literals substitute correctly, per §4.7.
func (e *Engine) resolveComplexStructure(raw string) (value.Value, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
		vals, err := e.resolveTopLevelItems(trimmed[1 : len(trimmed)-1])
		if err != nil {
			return value.Value{}, err
		}
		return value.TupleOf(vals), nil
	}

	isBrace := strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")
	isBracket := strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")
	if !isBrace && !isBracket {
		return value.Value{}, fmt.Errorf("not a valid complex structure")
	}

	content := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(content) == "" {
		return value.VectorOf([]value.Value{}), nil
	}

	items := topLevelCommaItems(content)
	if len(items) == 0 {
		return value.VectorOf([]value.Value{}), nil
	}

	if isBrace && firstTopLevelColon(items[0]) >= 0 {
		m := map[string]value.Value{}
		for _, item := range items {
			idx := firstTopLevelColon(item)
			if idx < 0 {
				return value.Value{}, fmt.Errorf("invalid map item: %s", item)
			}
			key := strings.TrimSpace(item[:idx])
			if len(key) >= 2 && key[0] == '\'' && key[len(key)-1] == '\'' {
				key = key[1 : len(key)-1]
			}
			val, err := e.resolveVal(strings.TrimSpace(item[idx+1:]))
			if err != nil {
				return value.Value{}, err
			}
			m[key] = val
		}
		return value.MapOf(m), nil
	}

	vals := make([]value.Value, 0, len(items))
	for _, item := range items {
		v, err := e.resolveVal(item)
		if err != nil {
			return value.Value{}, err
		}
		vals = append(vals, v)
	}
	return value.VectorOf(vals), nil
}

func (e *Engine) resolveTopLevelItems(content string) ([]value.Value, error) {
	items := topLevelCommaItems(content)
	vals := make([]value.Value, 0, len(items))
	for _, item := range items {
		v, err := e.resolveVal(item)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// varLoc names which of the three places a mutable binding was found in,
// so a caller can write the mutated value back to the same place.
type varLoc int

const (
	locNone varLoc = iota
	locFrame
	locGlobalBare
	locGlobalNS
)

// getVarMut implements get_var_mut's three-location lookup (top frame,
// bare global, namespaced global), returning a copy plus enough
// information to write a mutated copy back — Go maps don't yield
// addressable values, so the fetch/mutate/write-back pattern replaces
// returning a mutable reference directly.
func (e *Engine) getVarMut(name string) (value.Value, varLoc, string) {
	top := e.topFrame()
	if v, ok := top[name]; ok {
		return v, locFrame, name
	}
	if v, ok := e.globals[name]; ok {
		return v, locGlobalBare, name
	}
	if ns := e.currentNamespace(); ns != "" {
		key := ns + "." + name
		if v, ok := e.globals[key]; ok {
			return v, locGlobalNS, key
		}
	}
	return value.Value{}, locNone, ""
}

func (e *Engine) writeVarLoc(loc varLoc, key string, v value.Value) {
	switch loc {
	case locFrame:
		e.topFrame()[key] = v
	case locGlobalBare, locGlobalNS:
		e.globals[key] = v
	}
}

// setVariableAuto implements §4.7's create-local-by-default rule: top
// frame, then globals, then (for a dotted/bracketed name whose root is a
// known mutable binding) deep mutation, then namespaced global, and
// finally creation in the top frame.
//
// Deviates from the original deliberately (§9 Open Questions, DESIGN.md):
// when the name looks like an access chain but its root cannot be found
// anywhere, this returns an error instead of silently creating a literal
// dotted-named local.
func (e *Engine) setVariableAuto(name string, v value.Value) error {
	top := e.topFrame()
	if _, ok := top[name]; ok {
		top[name] = v
		return nil
	}
	if _, ok := e.globals[name]; ok {
		e.globals[name] = v
		return nil
	}

	if strings.ContainsAny(name, ".[") && !looksNumericToken(name) {
		chain, err := access.Parse(name)
		if err == nil && len(chain.Ops) > 0 {
			rootVal, loc, key := e.getVarMut(chain.Root)
			if loc == locNone {
				return fmt.Errorf("cannot assign to %q: root variable %q not found", name, chain.Root)
			}
			if err := access.Mutate(&rootVal, chain.Ops, v, e); err != nil {
				return err
			}
			e.writeVarLoc(loc, key, rootVal)
			return nil
		}
	}

	if ns := e.currentNamespace(); ns != "" {
		key := ns + "." + name
		if _, ok := e.globals[key]; ok {
			e.globals[key] = v
			return nil
		}
	}

	top[name] = v
	return nil
}

func looksNumericToken(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return false
		}
	}
	return true
}

// enterFunctionScope swaps the runtime namespace prefix to funcName's
// containing namespace, saving the caller's prefix for exitFunctionScope
// to restore.
func (e *Engine) enterFunctionScope(funcName string) {
	backup := append([]string(nil), e.nsStack...)
	e.nsBackup = append(e.nsBackup, backup)
	if idx := strings.LastIndex(funcName, "."); idx >= 0 {
		e.nsStack = strings.Split(funcName[:idx], ".")
	} else {
		e.nsStack = nil
	}
}

// exitFunctionScope restores the caller's namespace prefix; an empty
// backup stack is a fatal integrity error (§7).
func (e *Engine) exitFunctionScope() error {
	if len(e.nsBackup) == 0 {
		return fmt.Errorf("stack underflow: attempted to exit function scope without backup")
	}
	e.nsStack = e.nsBackup[len(e.nsBackup)-1]
	e.nsBackup = e.nsBackup[:len(e.nsBackup)-1]
	return nil
}
