package host

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	mjson "github.com/mcvoid/json"

	"github.com/mitescript/mite/internal/value"
)

// callJSON implements the json static module. Parsing goes through
// mcvoid/json's walk-the-tree API; there is no public bottom-up
// constructor in that package, so stringify is hand-rolled directly
// against value.Value (documented in DESIGN.md).
func callJSON(method string, args []value.Value) (value.Value, error) {
	switch method {
	case "parse":
		if len(args) != 1 {
			return value.Value{}, arityErr("json.parse", 1, len(args))
		}
		root, err := mjson.ParseString(args[0].Display())
		if err != nil {
			return value.Value{}, fmt.Errorf("JSON parse error: %w", err)
		}
		return jsonToValue(root), nil
	case "stringify":
		if len(args) < 1 {
			return value.Value{}, arityErr("json.stringify", 1, len(args))
		}
		pretty := false
		if len(args) > 1 {
			pretty = args[1].AsBool()
		}
		var b strings.Builder
		if err := writeJSON(&b, args[0], pretty, 0); err != nil {
			return value.Value{}, fmt.Errorf("JSON stringify error: %w", err)
		}
		return value.StringOf(b.String()), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for json module", method)
	}
}

// jsonToValue walks a parsed JSON document into Mite's value model. A
// JSON null has no counterpart in value.Kind, so it is represented as
// the literal string "null" — a deliberate, documented simplification.
func jsonToValue(v *mjson.Value) value.Value {
	switch v.Type() {
	case mjson.Null:
		return value.StringOf("null")
	case mjson.Boolean:
		b, _ := v.AsBoolean()
		return value.BoolOf(b)
	case mjson.Integer:
		i, _ := v.AsInteger()
		if i < -2147483648 || i > 2147483647 {
			return value.FloatOf(float64(i))
		}
		return value.IntOf(int32(i))
	case mjson.Number:
		f, _ := v.AsNumber()
		return value.FloatOf(f)
	case mjson.String:
		s, _ := v.AsString()
		return value.StringOf(s)
	case mjson.Array:
		items, _ := v.AsArray()
		out := make([]value.Value, len(items))
		for i, it := range items {
			out[i] = jsonToValue(it)
		}
		return value.VectorOf(out)
	case mjson.Object:
		obj, _ := v.AsObject()
		out := make(map[string]value.Value, len(obj))
		for k, it := range obj {
			out[k] = jsonToValue(it)
		}
		return value.MapOf(out)
	default:
		return value.StringOf("null")
	}
}

func writeJSON(b *strings.Builder, v value.Value, pretty bool, depth int) error {
	switch v.Kind {
	case value.Bool:
		if v.B {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case value.Int:
		b.WriteString(strconv.FormatInt(int64(v.I), 10))
	case value.Float:
		if v.F != v.F || v.F > 1e308 || v.F < -1e308 {
			return fmt.Errorf("infinite or NaN floats cannot be serialized to JSON")
		}
		b.WriteString(strconv.FormatFloat(v.F, 'g', -1, 64))
	case value.String:
		writeJSONString(b, v.S)
	case value.Time:
		writeJSONString(b, v.T.Local().Format(time.RFC3339))
	case value.Tuple, value.Vector:
		items := v.Vec
		if v.Kind == value.Tuple {
			items = v.Tuple
		}
		b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeIndent(b, pretty, depth+1)
			if err := writeJSON(b, item, pretty, depth+1); err != nil {
				return err
			}
		}
		writeIndent(b, pretty, depth)
		b.WriteByte(']')
	case value.Map:
		b.WriteByte('{')
		first := true
		for k, item := range v.MapVal {
			if !first {
				b.WriteByte(',')
			}
			first = false
			writeIndent(b, pretty, depth+1)
			writeJSONString(b, k)
			b.WriteByte(':')
			if pretty {
				b.WriteByte(' ')
			}
			if err := writeJSON(b, item, pretty, depth+1); err != nil {
				return err
			}
		}
		writeIndent(b, pretty, depth)
		b.WriteByte('}')
	case value.Function:
		writeJSONString(b, "<Function: "+v.Fn+">")
	case value.Foreign:
		if v.Obj == nil {
			writeJSONString(b, "<Foreign: nil>")
		} else {
			writeJSONString(b, "<Foreign: "+v.Obj.TypeName()+">")
		}
	default:
		writeJSONString(b, v.Display())
	}
	return nil
}

func writeIndent(b *strings.Builder, pretty bool, depth int) {
	if !pretty {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
