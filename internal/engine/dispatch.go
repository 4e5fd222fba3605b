package engine

import (
	"fmt"
	"strings"

	"github.com/mitescript/mite/internal/host"
	"github.com/mitescript/mite/internal/program"
	"github.com/mitescript/mite/internal/value"
)

// step dispatches a single statement, returning whether PC should jump
// (and to where) or simply advance by one, per §4.6's per-Kind rules.
func (e *Engine) step(pc int, stmt *program.Statement) (bool, int, error) {
	switch stmt.Kind {
	case program.Print:
		return e.stepPrint(stmt)
	case program.Input:
		return e.stepInput(stmt)
	case program.Time:
		return e.stepTime(stmt)
	case program.Exec:
		return e.stepExec(stmt)
	case program.MethodCall:
		return e.stepMethodCall(pc, stmt)
	case program.FunctionCall:
		return e.stepFunctionCall(pc, stmt)
	case program.DefineGlobal:
		return e.stepDefineGlobal(stmt)
	case program.DefineLocal:
		return e.stepDefineLocal(stmt)
	case program.CalcAssignment:
		return e.stepCalcAssignment(stmt)
	case program.CalcArithmetic:
		return e.stepCalcArithmetic(stmt)
	case program.Label:
		return false, 0, nil
	case program.Goto:
		return e.stepGoto(stmt)
	case program.Call:
		return e.stepCall(pc, stmt)
	case program.FunctionDef:
		return e.jumpPast(pc)
	case program.EndFunction:
		return e.stepEndFunction(pc)
	case program.Return:
		return e.stepReturn(pc, stmt)
	case program.If:
		return e.stepIf(pc, stmt)
	case program.ElseIf:
		return e.stepElseIf(pc, stmt)
	case program.Else:
		return e.jumpIfLinked(pc)
	case program.EndIf:
		return false, 0, nil
	case program.Match:
		return e.stepMatch(pc, stmt)
	case program.Case, program.Default:
		return e.jumpPast(pc)
	case program.EndMatch:
		return false, 0, nil
	case program.Loop:
		return false, 0, nil
	case program.While:
		return e.stepWhile(pc, stmt)
	case program.EndWhile:
		return e.jumpPast(pc)
	case program.For:
		return e.stepFor(pc, stmt)
	case program.EndFor:
		return e.stepEndFor(pc, stmt)
	case program.Foreach:
		return e.stepForeach(pc, stmt)
	case program.EndForeach:
		return e.stepEndForeach(pc, stmt)
	case program.Try:
		return e.stepTry(pc)
	case program.Catch:
		return false, 0, nil
	case program.EndTry:
		return e.stepEndTry(pc)
	case program.EndCatch:
		return false, 0, nil
	case program.Break:
		return e.jumpPast(pc)
	case program.ModuleStart, program.ModuleEnd:
		return false, 0, nil
	default:
		return false, 0, fmt.Errorf("unhandled statement kind %v", stmt.Kind)
	}
}

// jumpPast jumps to the jump-map entry recorded for pc, erroring if one
// was never installed — the shared shape of Break/Case/Default/
// FunctionDef's forward skip and EndWhile's jump back to its header.
func (e *Engine) jumpPast(pc int) (bool, int, error) {
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("no jump target recorded for this statement")
	}
	return true, target, nil
}

// jumpIfLinked jumps if a jump-map entry exists, otherwise falls through —
// used by Else, which only carries an entry when a terminator installed
// one but should never hard-fail if somehow absent.
func (e *Engine) jumpIfLinked(pc int) (bool, int, error) {
	if target, ok := e.prog.JumpMap[pc]; ok {
		return true, target, nil
	}
	return false, 0, nil
}

func (e *Engine) stepPrint(stmt *program.Statement) (bool, int, error) {
	var b strings.Builder
	for _, seg := range stmt.Segments {
		if seg.Literal {
			b.WriteString(seg.Text)
			continue
		}
		v, err := e.resolveVal(seg.Text)
		if err != nil {
			return false, 0, err
		}
		b.WriteString(v.Display())
	}
	e.host.Print(b.String())
	return false, 0, nil
}

func (e *Engine) stepInput(stmt *program.Statement) (bool, int, error) {
	text, err := e.host.Input(stmt.Name)
	if err != nil {
		return false, 0, err
	}
	if err := e.setVariableAuto(stmt.Name, value.ParseInput(text)); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}

func (e *Engine) stepTime(stmt *program.Statement) (bool, int, error) {
	if err := e.setVariableAuto(stmt.Name, value.TimeOf(nowFunc())); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}

func (e *Engine) stepExec(stmt *program.Statement) (bool, int, error) {
	var argsText string
	if len(stmt.Args) > 0 {
		v, err := e.resolveVal(stmt.Args[0])
		if err == nil {
			argsText = v.Display()
		} else {
			argsText = stmt.Args[0]
		}
	}
	var args []string
	if strings.TrimSpace(argsText) != "" {
		args = strings.Fields(argsText)
	}
	handled, err := e.host.Command(stmt.Name, args)
	if err != nil {
		return false, 0, err
	}
	if !handled {
		return false, 0, fmt.Errorf("unknown command: %s", stmt.Name)
	}
	return false, 0, nil
}

func (e *Engine) stepDefineGlobal(stmt *program.Statement) (bool, int, error) {
	v, err := e.resolveVal(stmt.Operand)
	if err != nil {
		return false, 0, err
	}
	key := stmt.Name
	if ns := e.currentNamespace(); ns != "" {
		key = ns + "." + stmt.Name
	}
	e.globals[key] = v
	return false, 0, nil
}

func (e *Engine) stepDefineLocal(stmt *program.Statement) (bool, int, error) {
	v, err := e.resolveVal(stmt.Operand)
	if err != nil {
		return false, 0, err
	}
	e.topFrame()[stmt.Name] = v
	return false, 0, nil
}

func (e *Engine) stepCalcAssignment(stmt *program.Statement) (bool, int, error) {
	rhs, err := e.resolveVal(stmt.Operand)
	if err != nil {
		return false, 0, err
	}
	var result value.Value
	if stmt.Op == "=" {
		result = rhs
	} else {
		cur, err := e.resolveVal(stmt.Name)
		if err != nil {
			return false, 0, err
		}
		result, err = value.BinaryOp(stmt.Op, cur, rhs)
		if err != nil {
			return false, 0, err
		}
	}
	if err := e.setVariableAuto(stmt.Name, result); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}

func (e *Engine) stepCalcArithmetic(stmt *program.Statement) (bool, int, error) {
	left, err := e.resolveVal(stmt.Left)
	if err != nil {
		return false, 0, err
	}
	right, err := e.resolveVal(stmt.Right)
	if err != nil {
		return false, 0, err
	}
	result, err := value.BinaryOp(stmt.Op, left, right)
	if err != nil {
		return false, 0, err
	}
	if err := e.setVariableAuto(stmt.Name, result); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}

func (e *Engine) stepGoto(stmt *program.Statement) (bool, int, error) {
	idx, ok := e.prog.Labels[stmt.Name]
	if !ok {
		return false, 0, fmt.Errorf("goto unknown label: %s", stmt.Name)
	}
	return true, idx, nil
}

func (e *Engine) lookupCallTarget(name string) (int, bool) {
	if idx, ok := e.prog.Labels[name]; ok {
		return idx, true
	}
	if ns := e.currentNamespace(); ns != "" {
		if idx, ok := e.prog.Labels[ns+"."+name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func (e *Engine) stepCall(pc int, stmt *program.Statement) (bool, int, error) {
	idx, ok := e.lookupCallTarget(stmt.Name)
	if !ok {
		return false, 0, fmt.Errorf("call unknown label: %s", stmt.Name)
	}
	e.callStack = append(e.callStack, pc+1)
	e.retStack = append(e.retStack, returnTarget{})
	e.argStack = append(e.argStack, nil)
	e.enterFunctionScope(stmt.Name)
	e.frames = append(e.frames, map[string]value.Value{})
	return true, idx + 1, nil
}

func (e *Engine) stepEndFunction(pc int) (bool, int, error) {
	return e.popCallFrame(nil)
}

func (e *Engine) stepReturn(pc int, stmt *program.Statement) (bool, int, error) {
	var retVal value.Value
	if strings.TrimSpace(stmt.Operand) != "" {
		v, err := e.resolveVal(stmt.Operand)
		if err != nil {
			return false, 0, err
		}
		retVal = v
	}
	return e.popCallFrame(&retVal)
}

// popCallFrame unwinds the current function call: pop the frame, restore
// the caller's namespace, and resume at the recorded return address,
// writing retVal into the caller's return target when both are present.
func (e *Engine) popCallFrame(retVal *value.Value) (bool, int, error) {
	if len(e.callStack) == 0 {
		return false, 0, fmt.Errorf("stack underflow: return/end-function outside of a call")
	}
	if len(e.frames) > 1 {
		e.frames = e.frames[:len(e.frames)-1]
	}
	if err := e.exitFunctionScope(); err != nil {
		return false, 0, err
	}
	target := e.retStack[len(e.retStack)-1]
	e.retStack = e.retStack[:len(e.retStack)-1]
	e.argStack = e.argStack[:len(e.argStack)-1]
	retAddr := e.callStack[len(e.callStack)-1]
	e.callStack = e.callStack[:len(e.callStack)-1]

	if target.has && retVal != nil {
		if err := e.setVariableAuto(target.name, *retVal); err != nil {
			return false, 0, err
		}
	}
	return true, retAddr, nil
}

func (e *Engine) stepIf(pc int, stmt *program.Statement) (bool, int, error) {
	tokens := stmt.CondTokens
	if len(tokens) == 4 {
		idx, ok := e.prog.Labels[tokens[3]]
		if !ok {
			return false, 0, fmt.Errorf("legacy if-goto unknown label: %s", tokens[3])
		}
		truth, err := e.conditionTrue(tokens[:3])
		if err != nil {
			return false, 0, err
		}
		if truth {
			return true, idx, nil
		}
		return false, 0, nil
	}
	truth, err := e.conditionTrue(tokens)
	if err != nil {
		return false, 0, err
	}
	if truth {
		return false, 0, nil
	}
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("if block missing jump target")
	}
	return true, target, nil
}

func (e *Engine) stepElseIf(pc int, stmt *program.Statement) (bool, int, error) {
	truth, err := e.conditionTrue(stmt.CondTokens)
	if err != nil {
		return false, 0, err
	}
	if truth {
		return false, 0, nil
	}
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("else_if missing jump target")
	}
	return true, target, nil
}

// conditionTrue evaluates a 1/2/3-token condition using the restricted
// resolver shared by If/ElseIf/While (§4.7): a lone token's truthiness, a
// leading '!' negating the following token, or a binary comparison.
func (e *Engine) conditionTrue(parts []string) (bool, error) {
	locals := e.topFrame()
	switch len(parts) {
	case 1:
		v, err := e.restrictedResolve(parts[0], locals)
		if err != nil {
			return false, err
		}
		return v.AsBool(), nil
	case 2:
		if parts[0] != "!" {
			return false, fmt.Errorf("invalid condition format: %v", parts)
		}
		v, err := e.restrictedResolve(parts[1], locals)
		if err != nil {
			return false, err
		}
		return !v.AsBool(), nil
	case 3:
		l, err := e.restrictedResolve(parts[0], locals)
		if err != nil {
			return false, err
		}
		r, err := e.restrictedResolve(parts[2], locals)
		if err != nil {
			return false, err
		}
		result, err := value.BinaryOp(parts[1], l, r)
		if err != nil {
			return false, err
		}
		return result.AsBool(), nil
	default:
		return false, fmt.Errorf("invalid condition format: %v", parts)
	}
}

// restrictedResolve is the If/ElseIf/While/Foreach-collection resolver:
// locals, then globals, then infer — with infer failure polished into a
// "not a quoted string" message unless the token looks numeric, in which
// case the raw infer error propagates.
func (e *Engine) restrictedResolve(token string, locals map[string]value.Value) (value.Value, error) {
	if v, ok := locals[token]; ok {
		return v, nil
	}
	if v, ok := e.globals[token]; ok {
		return v, nil
	}
	v, err := value.Infer(token)
	if err == nil {
		return v, nil
	}
	if len(token) > 0 && (token[0] == '-' || (token[0] >= '0' && token[0] <= '9')) {
		return value.Value{}, err
	}
	return value.Value{}, fmt.Errorf("variable %q not found (and not a quoted string)", token)
}

// matchSubjectResolve is Match's own distinct resolver: locals, globals,
// infer — with no digit-prefix message polishing at all.
func (e *Engine) matchSubjectResolve(token string, locals map[string]value.Value) (value.Value, error) {
	if v, ok := locals[token]; ok {
		return v, nil
	}
	if v, ok := e.globals[token]; ok {
		return v, nil
	}
	return value.Infer(token)
}

func (e *Engine) stepMatch(pc int, stmt *program.Statement) (bool, int, error) {
	locals := e.topFrame()
	subject, err := e.matchSubjectResolve(stmt.Name, locals)
	if err != nil {
		return false, 0, err
	}
	defaultPC := -1
	scan := pc + 1
	for scan < e.prog.Len() {
		s := e.prog.Statements[scan]
		switch s.Kind {
		case program.Case:
			caseVal, err := value.Infer(s.Operand)
			if err != nil {
				return false, 0, err
			}
			eq, err := value.BinaryOp("==", subject, caseVal)
			if err != nil {
				return false, 0, err
			}
			if eq.AsBool() {
				return true, scan + 1, nil
			}
		case program.Default:
			defaultPC = scan + 1
		case program.EndMatch:
			if defaultPC >= 0 {
				return true, defaultPC, nil
			}
			return true, scan, nil
		}
		scan++
	}
	return false, 0, fmt.Errorf("match missing EndMatch")
}

func (e *Engine) stepWhile(pc int, stmt *program.Statement) (bool, int, error) {
	truth, err := e.conditionTrue(stmt.CondTokens)
	if err != nil {
		return false, 0, err
	}
	if truth {
		return false, 0, nil
	}
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("while block missing jump target")
	}
	// JumpMap[pc] is EndWhile's own index; EndWhile is not inert (it jumps
	// back to this header), so landing there would re-loop forever instead
	// of exiting. Land one past it, matching stepFor/stepForeach.
	return true, target + 1, nil
}

func (e *Engine) stepFor(pc int, stmt *program.Statement) (bool, int, error) {
	startVal, err := value.Infer(stmt.ForStart)
	if err != nil {
		return false, 0, err
	}
	endVal, err := value.Infer(stmt.ForEnd)
	if err != nil {
		return false, 0, err
	}

	locals := e.topFrame()
	_, inLocal := locals[stmt.Name]
	_, inGlobal := e.globals[stmt.Name]
	if !inLocal && !inGlobal {
		locals[stmt.Name] = startVal
	}

	cur, ok := locals[stmt.Name]
	if !ok {
		cur, ok = e.globals[stmt.Name]
	}
	if !ok {
		return false, 0, fmt.Errorf("for loop variable %q unexpectedly absent", stmt.Name)
	}

	done, err := value.BinaryOp(">=", cur, endVal)
	if err != nil {
		return false, 0, err
	}
	if done.AsBool() {
		target, ok := e.prog.JumpMap[pc]
		if !ok {
			return false, 0, fmt.Errorf("for loop missing jump target")
		}
		return true, target + 1, nil
	}
	return false, 0, nil
}

func (e *Engine) stepEndFor(pc int, stmt *program.Statement) (bool, int, error) {
	locals := e.topFrame()
	cur, ok := locals[stmt.Name]
	if !ok {
		cur, ok = e.globals[stmt.Name]
	}
	if !ok {
		cur = value.IntOf(0)
	}
	next, err := value.BinaryOp("+", cur, value.IntOf(1))
	if err != nil {
		return false, 0, err
	}
	locals[stmt.Name] = next

	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("end-for missing jump target")
	}
	return true, target, nil
}

func (e *Engine) stepForeach(pc int, stmt *program.Statement) (bool, int, error) {
	locals := e.topFrame()
	collVal, err := e.restrictedResolve(stmt.ForeachCollection, locals)
	if err != nil {
		return false, 0, err
	}

	idxKey := "__idx_" + stmt.Name
	keysKey := "__keys_" + stmt.Name

	idxVal, ok := locals[idxKey]
	if !ok {
		idxVal = value.IntOf(0)
		locals[idxKey] = idxVal
		if collVal.Kind == value.Map {
			keys := make([]value.Value, 0, len(collVal.MapVal))
			for k := range collVal.MapVal {
				keys = append(keys, value.StringOf(k))
			}
			locals[keysKey] = value.VectorOf(keys)
		}
	}
	idx := int(idxVal.I)

	var length int
	var elem value.Value
	var haveElem bool

	switch collVal.Kind {
	case value.Vector:
		length = len(collVal.Vec)
		if idx < length {
			elem, haveElem = collVal.Vec[idx], true
		}
	case value.Tuple:
		length = len(collVal.Tuple)
		if idx < length {
			elem, haveElem = collVal.Tuple[idx], true
		}
	case value.Map:
		keysVal := locals[keysKey]
		length = len(keysVal.Vec)
		if idx < length {
			elem, haveElem = keysVal.Vec[idx], true
		}
	default:
		return false, 0, fmt.Errorf("cannot iterate over %s", collVal.Kind)
	}

	if idx >= length || !haveElem {
		delete(locals, idxKey)
		delete(locals, keysKey)
		target, ok := e.prog.JumpMap[pc]
		if !ok {
			return false, 0, fmt.Errorf("foreach missing jump target")
		}
		return true, target + 1, nil
	}

	locals[stmt.Name] = elem
	return false, 0, nil
}

func (e *Engine) stepEndForeach(pc int, stmt *program.Statement) (bool, int, error) {
	locals := e.topFrame()
	idxKey := "__idx_" + stmt.Name
	cur, ok := locals[idxKey]
	if !ok {
		cur = value.IntOf(0)
	}
	next, err := value.BinaryOp("+", cur, value.IntOf(1))
	if err != nil {
		return false, 0, err
	}
	locals[idxKey] = next

	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("end-foreach missing jump target")
	}
	return true, target, nil
}

func (e *Engine) stepTry(pc int) (bool, int, error) {
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("try block missing catch target")
	}
	e.tryStack = append(e.tryStack, target)
	return false, 0, nil
}

func (e *Engine) stepEndTry(pc int) (bool, int, error) {
	if len(e.tryStack) > 0 {
		e.tryStack = e.tryStack[:len(e.tryStack)-1]
	}
	target, ok := e.prog.JumpMap[pc]
	if !ok {
		return false, 0, fmt.Errorf("end-try missing jump target")
	}
	return true, target, nil
}

// stepMethodCall resolves the receiver (mutably, when it is a bare
// variable, so in-place mutation like a vector push is observed by later
// reads), dispatches the method through the host package, and optionally
// stores the result, per §4.8/§4.9.
func (e *Engine) stepMethodCall(pc int, stmt *program.Statement) (bool, int, error) {
	argVals, err := e.resolveArgs(stmt.Args)
	if err != nil {
		return false, 0, err
	}

	objVal, loc, key := e.getVarMut(stmt.Qualifier)
	writeBack := func(value.Value) {}
	if loc != locNone {
		writeBack = func(v value.Value) { e.writeVarLoc(loc, key, v) }
	} else {
		v, err := e.resolveVal(stmt.Qualifier)
		if err != nil {
			return false, 0, err
		}
		objVal = v
	}

	result, err := host.CallMethod(&objVal, stmt.Op, argVals)
	if err != nil {
		return false, 0, err
	}
	writeBack(objVal)

	if stmt.Name != "" {
		if err := e.setVariableAuto(stmt.Name, result); err != nil {
			return false, 0, err
		}
	}
	return false, 0, nil
}

// resolveFunctionCallTarget finds the label a FunctionCall statement jumps
// to, trying (in order): a bare label, a namespace-qualified label (only
// when a namespace is active), and finally whatever resolveVal(name)
// resolves to — a variable can hold a function
// reference returned by another call. Returning found=false means "not a
// label at all", letting stepFunctionCall fall back to method dispatch.
func (e *Engine) resolveFunctionCallTarget(name string) (idx int, label string, found bool, err error) {
	if i, ok := e.prog.Labels[name]; ok {
		return i, name, true, nil
	}
	if ns := e.currentNamespace(); ns != "" {
		if i, ok := e.prog.Labels[ns+"."+name]; ok {
			return i, ns + "." + name, true, nil
		}
	}
	v, verr := e.resolveVal(name)
	if verr != nil || v.Kind != value.Function {
		return 0, "", false, nil
	}
	i, ok := e.prog.Labels[v.Fn]
	if !ok {
		return 0, "", false, fmt.Errorf("variable %q points to unknown function %q", name, v.Fn)
	}
	return i, v.Fn, true, nil
}

// stepFunctionCall mirrors the original interpreter's dispatch order: a
// user-defined function label wins first; only when no label resolves at
// all does the dotted name get split into object/method and tried as a
// method call on a bound variable, falling back to a static module call
// (math.*, rand.*, json.*, ...) when the object name isn't a variable.
func (e *Engine) stepFunctionCall(pc int, stmt *program.Statement) (bool, int, error) {
	idx, label, found, err := e.resolveFunctionCallTarget(stmt.Name)
	if err != nil {
		return false, 0, err
	}
	if found {
		argVals, err := e.resolveArgs(stmt.Args)
		if err != nil {
			return false, 0, err
		}
		params := e.prog.Statements[idx].Args
		if len(params) != len(argVals) {
			return false, 0, fmt.Errorf("argument mismatch: expected %d, got %d", len(params), len(argVals))
		}
		newFrame := make(map[string]value.Value, len(params))
		for i, p := range params {
			newFrame[p] = argVals[i]
		}

		e.callStack = append(e.callStack, pc+1)
		e.retStack = append(e.retStack, returnTarget{name: stmt.Qualifier, has: stmt.Qualifier != ""})
		e.argStack = append(e.argStack, argVals)
		e.enterFunctionScope(label)
		e.frames = append(e.frames, newFrame)
		return true, idx + 1, nil
	}

	dot := strings.LastIndex(stmt.Name, ".")
	if dot < 0 {
		return false, 0, fmt.Errorf("unknown function: %q (no label found, and not a method call)", stmt.Name)
	}
	objectName, methodName := stmt.Name[:dot], stmt.Name[dot+1:]
	argVals, err := e.resolveArgs(stmt.Args)
	if err != nil {
		return false, 0, err
	}

	if objVal, loc, key := e.getVarMut(objectName); loc != locNone {
		result, err := host.CallMethod(&objVal, methodName, argVals)
		if err != nil {
			return false, 0, err
		}
		e.writeVarLoc(loc, key, objVal)
		if stmt.Qualifier != "" {
			if err := e.setVariableAuto(stmt.Qualifier, result); err != nil {
				return false, 0, err
			}
		}
		return false, 0, nil
	}

	result, err := host.CallStatic(objectName, methodName, argVals, e.sandboxRoot, e.perms)
	if err != nil {
		return false, 0, fmt.Errorf("unknown function or method: %q (%w)", stmt.Name, err)
	}
	if stmt.Qualifier != "" {
		if err := e.setVariableAuto(stmt.Qualifier, result); err != nil {
			return false, 0, err
		}
	}
	return false, 0, nil
}

func (e *Engine) resolveArgs(raw []string) ([]value.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]value.Value, 0, len(raw))
	for _, a := range raw {
		v, err := e.resolveVal(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
