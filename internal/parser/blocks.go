package parser

import (
	"strings"

	"github.com/mitescript/mite/internal/diag"
	"github.com/mitescript/mite/internal/program"
)

// blockKind discriminates the block forms the parser's block stack tracks
// between an opening "[" and its closing "]" (§4.5).
type blockKind int

const (
	blockIf blockKind = iota
	blockElse
	blockWhile
	blockLoop
	blockFor
	blockForeach
	blockMatch
	blockCase
	blockTry
	blockCatch
	blockFunction
	blockModule
)

// openBlock is one entry on the parse-time block stack: the index of its
// header statement, its kind, and (For/Foreach only) the loop variable name
// EndFor/EndForeach need to emit their terminator.
type openBlock struct {
	kind      blockKind
	startIdx  int
	loopVar   string // For/Foreach only
	moduleNm  string // Module only, for the terminator's name
	endTryIdx int     // Catch only: the EndTry index immediately preceding this Catch
}

// state holds everything the parser thread carries across lines: the
// program under construction, the block stack, the pending-cases stack (one
// slice per open Match, mirroring the original's match_stack), and the
// pending-breaks stack (one slice per open loop block — not present in the
// original at all; see DESIGN.md for why Mite adds it).
type state struct {
	prog         *program.Program
	blocks       []openBlock
	matchPending [][]int // top = current Match's Case/Default indices awaiting EndMatch link
	breakPending [][]int // top = current loop's Break indices awaiting after-terminator link
}

func newState() *state {
	return &state{prog: program.New()}
}

// activeNamespace derives the dotted parse-time namespace prefix by
// scanning the block stack for open Module blocks in order, mirroring
// get_active_namespace — there is no separate namespace stack, the block
// stack already records enough to reconstruct it.
func (s *state) activeNamespace() string {
	var parts []string
	for _, b := range s.blocks {
		if b.kind == blockModule {
			parts = append(parts, b.moduleNm)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ".")
}

// handleBlockClose pops the block stack on a leading "]", emits the kind's
// terminator statement, and installs the jump-map entries the closing kind
// requires — mirroring handle_block_close exactly, plus the Break-linking
// fix (§9 Open Questions, DESIGN.md): a loop block's pending breaks are
// patched to the after-terminator index right alongside its bidirectional
// loop link.
func (s *state) handleBlockClose(lineNum int) error {
	if len(s.blocks) == 0 {
		return diag.ParseError(lineNum, "unexpected ']' (no block to close)")
	}
	top := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]

	currentIdx := s.prog.Len()

	switch top.kind {
	case blockWhile, blockLoop, blockFor, blockForeach:
		// The header's own forward link stays the terminator's index:
		// stepFor/stepForeach/stepWhile each add the "+1" themselves when
		// they read this entry on loop exit. Break has no such caller-side
		// "+1" (it dispatches via the unconditional jumpPast), so its own
		// linked target must already point one past the terminator —
		// EndWhile/EndFor/EndForeach are not inert like EndIf/EndMatch,
		// landing exactly on one re-enters the loop (or, for EndFor/
		// EndForeach, re-increments the loop variable/index) instead of
		// exiting it.
		s.prog.JumpMap[top.startIdx] = currentIdx
		s.prog.JumpMap[currentIdx] = top.startIdx
		pending := s.breakPending[len(s.breakPending)-1]
		s.breakPending = s.breakPending[:len(s.breakPending)-1]
		for _, idx := range pending {
			s.prog.JumpMap[idx] = currentIdx + 1
		}
	case blockFunction:
		// EndFunction isn't inert either: reaching it runs popCallFrame,
		// which errors outside of a real call. FunctionDef's dispatch
		// jumps here via the unconditional jumpPast (no caller-side "+1"),
		// so ordinary top-to-bottom fall-through onto a FunctionDef must
		// skip past EndFunction, not land on it.
		s.prog.JumpMap[top.startIdx] = currentIdx + 1
	case blockIf, blockElse, blockTry:
		s.prog.JumpMap[top.startIdx] = currentIdx
	case blockCatch:
		s.prog.JumpMap[top.startIdx] = currentIdx
		// Fix (required by §8 "jump-map totality", which names EndTry
		// explicitly): link the paired EndTry to just past EndCatch, so
		// the success path — falling through Try's body into EndTry —
		// skips the catch body instead of always executing it too.
		s.prog.JumpMap[top.endTryIdx] = currentIdx + 1
	case blockMatch:
		cases := s.matchPending[len(s.matchPending)-1]
		s.matchPending = s.matchPending[:len(s.matchPending)-1]
		for _, idx := range cases {
			s.prog.JumpMap[idx] = currentIdx
		}
	case blockModule, blockCase:
		// no terminator statement, no jump-map entry
	}

	var closing *program.Statement
	switch top.kind {
	case blockWhile, blockLoop:
		closing = &program.Statement{Kind: program.EndWhile}
	case blockFor:
		closing = &program.Statement{Kind: program.EndFor, Name: top.loopVar}
	case blockForeach:
		closing = &program.Statement{Kind: program.EndForeach, Name: top.loopVar}
	case blockIf, blockElse:
		closing = &program.Statement{Kind: program.EndIf}
	case blockMatch:
		closing = &program.Statement{Kind: program.EndMatch}
	case blockCase:
		return nil
	case blockTry:
		closing = &program.Statement{Kind: program.EndTry}
	case blockCatch:
		closing = &program.Statement{Kind: program.EndCatch}
	case blockFunction:
		closing = &program.Statement{Kind: program.EndFunction}
	case blockModule:
		closing = &program.Statement{Kind: program.ModuleEnd, Name: top.moduleNm}
	}
	s.prog.Emit(*closing, lineNum)
	return nil
}

// pushBlockStack opens a block for a statement whose line ends in "[",
// mirroring push_block_stack.
func (s *state) pushBlockStack(lineNum int, stmt program.Statement, idx int) error {
	var ob openBlock
	switch stmt.Kind {
	case program.If:
		ob = openBlock{kind: blockIf, startIdx: idx}
	case program.Else, program.ElseIf:
		ob = openBlock{kind: blockElse, startIdx: idx}
	case program.While:
		ob = openBlock{kind: blockWhile, startIdx: idx}
		s.breakPending = append(s.breakPending, nil)
	case program.For:
		ob = openBlock{kind: blockFor, startIdx: idx, loopVar: stmt.Name}
		s.breakPending = append(s.breakPending, nil)
	case program.Foreach:
		ob = openBlock{kind: blockForeach, startIdx: idx, loopVar: stmt.Name}
		s.breakPending = append(s.breakPending, nil)
	case program.Loop:
		ob = openBlock{kind: blockLoop, startIdx: idx}
		s.breakPending = append(s.breakPending, nil)
	case program.Match:
		ob = openBlock{kind: blockMatch, startIdx: idx}
		s.matchPending = append(s.matchPending, nil)
	case program.Case, program.Default:
		ob = openBlock{kind: blockCase, startIdx: idx}
	case program.Try:
		ob = openBlock{kind: blockTry, startIdx: idx}
	case program.Catch:
		ob = openBlock{kind: blockCatch, startIdx: idx, endTryIdx: idx - 1}
	case program.FunctionDef:
		ob = openBlock{kind: blockFunction, startIdx: idx}
	case program.ModuleStart:
		ob = openBlock{kind: blockModule, startIdx: idx, moduleNm: stmt.Name}
	default:
		return diag.ParseError(lineNum, "this command cannot start a block")
	}
	s.blocks = append(s.blocks, ob)
	return nil
}

// linkControlFlow installs the non-block-close jump-map entries for a
// statement as it is about to be emitted, mirroring link_control_flow:
// else/else_if retroactively rewrite the just-closed If/ElseIf's forward
// link, catch retroactively rewrites the just-closed Try's forward link,
// and case/default register themselves on the innermost pending-cases list.
// Break additionally registers itself on the innermost pending-breaks list
// (the deliberate fix — see DESIGN.md).
func (s *state) linkControlFlow(lineNum int, stmt program.Statement, currentIdx int) error {
	last := program.Kind(-1)
	if currentIdx > 0 {
		last = s.prog.Statements[currentIdx-1].Kind
	}

	if stmt.Kind == program.Else || stmt.Kind == program.ElseIf {
		if last != program.EndIf {
			return diag.LinkError(lineNum, "'else'/'else_if' must follow ']' (EndIf)")
		}
		prevEndIfIdx := currentIdx - 1
		prevStart, found := reverseJumpLookup(s.prog, prevEndIfIdx)
		if !found {
			return diag.LinkError(lineNum, "'else' linkage failed")
		}
		target := currentIdx
		if stmt.Kind == program.Else {
			target = currentIdx + 1
		}
		s.prog.JumpMap[prevStart] = target
	}

	if stmt.Kind == program.Catch {
		if last != program.EndTry {
			return diag.LinkError(lineNum, "'catch' must immediately follow 'try [...]'")
		}
		endTryIdx := currentIdx - 1
		tryIdx, found := reverseJumpLookup(s.prog, endTryIdx)
		if !found {
			return diag.LinkError(lineNum, "'catch' linkage failed")
		}
		s.prog.JumpMap[tryIdx] = currentIdx
	}

	if stmt.Kind == program.Case || stmt.Kind == program.Default {
		if len(s.matchPending) == 0 {
			return diag.LinkError(lineNum, "case/default outside of match")
		}
		top := len(s.matchPending) - 1
		s.matchPending[top] = append(s.matchPending[top], currentIdx)
	}

	if stmt.Kind == program.Break {
		if len(s.breakPending) == 0 {
			return diag.LinkError(lineNum, "break outside of a loop")
		}
		top := len(s.breakPending) - 1
		s.breakPending[top] = append(s.breakPending[top], currentIdx)
	}

	return nil
}

// reverseJumpLookup finds the source index whose jump-map entry currently
// targets dest, matching the original's `jump_map.iter().find(|(_,&d)|
// d==dest)` reverse scan used to locate a just-closed block's header.
func reverseJumpLookup(p *program.Program, dest int) (int, bool) {
	for src, d := range p.JumpMap {
		if d == dest {
			return src, true
		}
	}
	return 0, false
}
