// Package access implements the dotted/indexed access-chain grammar of
// spec §4.3: parsing "root(.field|[expr])*" into a root name plus a list
// of ops, evaluating a chain for reads, and deep-mutating through a chain
// for writes.
package access

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitescript/mite/internal/split"
	"github.com/mitescript/mite/internal/value"
)

// OpKind discriminates the two step kinds a chain can take.
type OpKind int

const (
	Dot OpKind = iota
	Bracket
)

// Op is one step of an access chain: either ".name" or "[expr]". For
// Bracket, Expr holds the raw, unresolved expression text between the
// brackets (tracking nested '[').
type Op struct {
	Kind OpKind
	Name string // for Dot
	Expr string // for Bracket, unresolved
}

// Chain is a parsed access chain: a root identifier plus zero or more
// ops. A chain with zero ops is just a bare variable reference.
type Chain struct {
	Root string
	Ops  []Op
}

// Looks reports whether token looks like an access chain at all: it must
// start with an identifier character and contain '.' or '['.
func Looks(token string) bool {
	if token == "" {
		return false
	}
	if !isIdentStart(token[0]) {
		return false
	}
	return strings.ContainsAny(token, ".[")
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// Parse splits token into a root identifier and a sequence of Dot/Bracket
// ops, per §4.3's chain parser.
func Parse(token string) (Chain, error) {
	i := 0
	for i < len(token) && isIdentPart(token[i]) {
		i++
	}
	if i == 0 {
		return Chain{}, fmt.Errorf("access chain %q has no root identifier", token)
	}
	c := Chain{Root: token[:i]}
	for i < len(token) {
		switch token[i] {
		case '.':
			i++
			start := i
			for i < len(token) && token[i] != '.' && token[i] != '[' {
				i++
			}
			if i == start {
				return Chain{}, fmt.Errorf("empty field name in access chain %q", token)
			}
			c.Ops = append(c.Ops, Op{Kind: Dot, Name: token[start:i]})
		case '[':
			end := split.MatchingBracket(token, i)
			if end < 0 {
				return Chain{}, fmt.Errorf("unbalanced '[' in access chain %q", token)
			}
			c.Ops = append(c.Ops, Op{Kind: Bracket, Expr: token[i+1 : end]})
			i = end + 1
		default:
			return Chain{}, fmt.Errorf("unexpected character %q in access chain %q", string(token[i]), token)
		}
	}
	return c, nil
}

// Resolver evaluates an arbitrary (already-parsed or still-raw) expression
// token to a Value. The engine's resolve_val implements this.
type Resolver interface {
	Resolve(token string) (value.Value, error)
}

// Eval walks ops against root, per §4.3's read rules.
func Eval(root value.Value, ops []Op, r Resolver) (value.Value, error) {
	cur := root
	for _, op := range ops {
		next, err := step(cur, op, r)
		if err != nil {
			return value.Value{}, err
		}
		cur = next
	}
	return cur, nil
}

func step(cur value.Value, op Op, r Resolver) (value.Value, error) {
	switch op.Kind {
	case Dot:
		switch cur.Kind {
		case value.Tuple, value.Vector:
			idx, err := strconv.Atoi(op.Name)
			if err != nil {
				return value.Value{}, fmt.Errorf("dot index %q is not an integer", op.Name)
			}
			return indexSeq(cur, idx)
		case value.Map:
			v, ok := cur.MapVal[op.Name]
			if !ok {
				return value.Value{}, fmt.Errorf("map key %q not found", op.Name)
			}
			return v, nil
		case value.Foreign:
			v, ok, err := cur.Obj.Get(op.Name)
			if err != nil {
				return value.Value{}, err
			}
			if !ok {
				return value.Value{}, fmt.Errorf("foreign object has no field %q", op.Name)
			}
			return v, nil
		default:
			return value.Value{}, fmt.Errorf("cannot access field %q on %s", op.Name, cur.Kind)
		}
	case Bracket:
		idxVal, err := r.Resolve(op.Expr)
		if err != nil {
			return value.Value{}, err
		}
		switch cur.Kind {
		case value.Tuple, value.Vector:
			i, ok := idxVal.AsFloat()
			if !ok {
				return value.Value{}, fmt.Errorf("index expression %q did not resolve to a number", op.Expr)
			}
			return indexSeq(cur, int(i))
		case value.Map:
			key := idxVal.Display()
			v, ok := cur.MapVal[key]
			if !ok {
				return value.Value{}, fmt.Errorf("map key %q not found", key)
			}
			return v, nil
		case value.Foreign:
			key := idxVal.Display()
			v, ok, err := cur.Obj.Get(key)
			if err != nil {
				return value.Value{}, err
			}
			if !ok {
				return value.Value{}, fmt.Errorf("foreign object has no field %q", key)
			}
			return v, nil
		default:
			return value.Value{}, fmt.Errorf("cannot index into %s", cur.Kind)
		}
	default:
		return value.Value{}, fmt.Errorf("unknown access op")
	}
}

func indexSeq(cur value.Value, idx int) (value.Value, error) {
	var items []value.Value
	if cur.Kind == value.Tuple {
		items = cur.Tuple
	} else {
		items = cur.Vec
	}
	if idx < 0 || idx >= len(items) {
		return value.Value{}, fmt.Errorf("index %d out of bounds (length %d)", idx, len(items))
	}
	return items[idx], nil
}

// Mutate walks ops against *root and assigns newVal at the terminal step,
// per §4.3's deep-mutation rules: intermediate Map key not found is an
// error, out-of-bounds indexing is an error, and mutating into a Foreign's
// non-terminal property is rejected (only a terminal Foreign Set is
// supported).
func Mutate(root *value.Value, ops []Op, newVal value.Value, r Resolver) error {
	if len(ops) == 0 {
		*root = newVal
		return nil
	}
	return mutateStep(root, ops, newVal, r)
}

func mutateStep(cur *value.Value, ops []Op, newVal value.Value, r Resolver) error {
	op := ops[0]
	last := len(ops) == 1

	switch op.Kind {
	case Dot:
		switch cur.Kind {
		case value.Tuple, value.Vector:
			idx, err := strconv.Atoi(op.Name)
			if err != nil {
				return fmt.Errorf("dot index %q is not an integer", op.Name)
			}
			return mutateSeqElem(cur, idx, ops, last, newVal, r)
		case value.Map:
			return mutateMapKey(cur, op.Name, ops, last, newVal, r)
		case value.Foreign:
			if !last {
				return fmt.Errorf("cannot mutate a non-terminal property through a Foreign object; expose a method instead")
			}
			return cur.Obj.Set(op.Name, newVal)
		default:
			return fmt.Errorf("cannot access field %q on %s", op.Name, cur.Kind)
		}
	case Bracket:
		idxVal, err := r.Resolve(op.Expr)
		if err != nil {
			return err
		}
		switch cur.Kind {
		case value.Tuple, value.Vector:
			f, ok := idxVal.AsFloat()
			if !ok {
				return fmt.Errorf("index expression %q did not resolve to a number", op.Expr)
			}
			return mutateSeqElem(cur, int(f), ops, last, newVal, r)
		case value.Map:
			return mutateMapKey(cur, idxVal.Display(), ops, last, newVal, r)
		case value.Foreign:
			if !last {
				return fmt.Errorf("cannot mutate a non-terminal property through a Foreign object; expose a method instead")
			}
			return cur.Obj.Set(idxVal.Display(), newVal)
		default:
			return fmt.Errorf("cannot index into %s", cur.Kind)
		}
	default:
		return fmt.Errorf("unknown access op")
	}
}

func mutateSeqElem(cur *value.Value, idx int, ops []Op, last bool, newVal value.Value, r Resolver) error {
	items := cur.Vec
	if cur.Kind == value.Tuple {
		items = cur.Tuple
	}
	if idx < 0 || idx >= len(items) {
		return fmt.Errorf("index %d out of bounds (length %d)", idx, len(items))
	}
	if last {
		items[idx] = newVal
		return nil
	}
	return mutateStep(&items[idx], ops[1:], newVal, r)
}

func mutateMapKey(cur *value.Value, key string, ops []Op, last bool, newVal value.Value, r Resolver) error {
	if last {
		if cur.MapVal == nil {
			cur.MapVal = map[string]value.Value{}
		}
		cur.MapVal[key] = newVal
		return nil
	}
	elem, ok := cur.MapVal[key]
	if !ok {
		return fmt.Errorf("map key %q not found", key)
	}
	if err := mutateStep(&elem, ops[1:], newVal, r); err != nil {
		return err
	}
	cur.MapVal[key] = elem
	return nil
}
