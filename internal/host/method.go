package host

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitescript/mite/internal/value"
)

// CallMethod dispatches an instance method call against obj (spec §4.9).
// When method contains a '.', the FIRST segment names a property to
// traverse into (obj.a.b.method(...) style chains) before the remaining
// dotted tail is dispatched recursively — distinct from the LAST-dot
// split FunctionCall uses to separate a static module from its method.
func CallMethod(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	if dot := strings.IndexByte(method, '.'); dot >= 0 {
		prop, rest := method[:dot], method[dot+1:]
		child, err := traverseProperty(obj, prop)
		if err != nil {
			return value.Value{}, err
		}
		result, err := CallMethod(child, rest, args)
		if err != nil {
			return value.Value{}, err
		}
		writeBackProperty(obj, prop, *child)
		return result, nil
	}

	switch obj.Kind {
	case value.Vector:
		return methodVector(obj, method, args)
	case value.Map:
		return methodMap(obj, method, args)
	case value.Tuple:
		return methodTuple(obj, method, args)
	case value.String:
		return methodString(obj, method, args)
	case value.Time:
		return methodTime(obj, method, args)
	case value.Foreign:
		if obj.Obj == nil {
			return value.Value{}, fmt.Errorf("foreign object is nil")
		}
		v, ok, err := obj.Obj.Call(method, args)
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			return value.Value{}, fmt.Errorf("unknown method %q for foreign object", method)
		}
		return v, nil
	default:
		return value.Value{}, fmt.Errorf("type %s does not support methods", obj.Kind)
	}
}

func traverseProperty(obj *value.Value, prop string) (*value.Value, error) {
	switch obj.Kind {
	case value.Map:
		v, ok := obj.MapVal[prop]
		if !ok {
			return nil, fmt.Errorf("property %q not found", prop)
		}
		return &v, nil
	case value.Vector, value.Tuple:
		idx, err := strconv.Atoi(prop)
		if err != nil {
			return nil, fmt.Errorf("index must be a number")
		}
		items := obj.Vec
		if obj.Kind == value.Tuple {
			items = obj.Tuple
		}
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("index out of bounds")
		}
		return &items[idx], nil
	case value.Foreign:
		if obj.Obj == nil {
			return nil, fmt.Errorf("foreign object is nil")
		}
		v, ok, err := obj.Obj.Get(prop)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("property %q not found", prop)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("cannot traverse property on type %s", obj.Kind)
	}
}

func writeBackProperty(obj *value.Value, prop string, v value.Value) {
	switch obj.Kind {
	case value.Map:
		obj.MapVal[prop] = v
	case value.Vector:
		if idx, err := strconv.Atoi(prop); err == nil && idx >= 0 && idx < len(obj.Vec) {
			obj.Vec[idx] = v
		}
	case value.Tuple:
		if idx, err := strconv.Atoi(prop); err == nil && idx >= 0 && idx < len(obj.Tuple) {
			obj.Tuple[idx] = v
		}
	case value.Foreign:
		if obj.Obj != nil {
			_ = obj.Obj.Set(prop, v)
		}
	}
}

func arityErr(method string, want, got int) error {
	return fmt.Errorf("%s expects %d argument(s), got %d", method, want, got)
}

func methodVector(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "push":
		if len(args) != 1 {
			return value.Value{}, arityErr("push", 1, len(args))
		}
		obj.Vec = append(obj.Vec, args[0])
		return value.IntOf(0), nil
	case "pop":
		if len(obj.Vec) == 0 {
			return value.Value{}, fmt.Errorf("cannot pop from empty vector")
		}
		last := obj.Vec[len(obj.Vec)-1]
		obj.Vec = obj.Vec[:len(obj.Vec)-1]
		return last, nil
	case "len":
		return value.IntOf(int32(len(obj.Vec))), nil
	case "get":
		if len(args) != 1 {
			return value.Value{}, arityErr("get", 1, len(args))
		}
		idx, ok := args[0].AsFloat()
		if !ok || int(idx) < 0 || int(idx) >= len(obj.Vec) {
			return value.Value{}, fmt.Errorf("index out of bounds")
		}
		return obj.Vec[int(idx)], nil
	case "remove":
		if len(args) != 1 {
			return value.Value{}, arityErr("remove", 1, len(args))
		}
		idxf, _ := args[0].AsFloat()
		idx := int(idxf)
		if idx < 0 || idx >= len(obj.Vec) {
			return value.Value{}, fmt.Errorf("index out of bounds")
		}
		removed := obj.Vec[idx]
		obj.Vec = append(obj.Vec[:idx], obj.Vec[idx+1:]...)
		return removed, nil
	case "insert":
		if len(args) != 2 {
			return value.Value{}, arityErr("insert", 2, len(args))
		}
		idxf, _ := args[0].AsFloat()
		idx := int(idxf)
		if idx < 0 || idx > len(obj.Vec) {
			return value.Value{}, fmt.Errorf("index out of bounds")
		}
		obj.Vec = append(obj.Vec, value.Value{})
		copy(obj.Vec[idx+1:], obj.Vec[idx:])
		obj.Vec[idx] = args[1]
		return value.IntOf(0), nil
	case "clear":
		obj.Vec = nil
		return value.IntOf(0), nil
	case "join":
		if len(args) != 1 {
			return value.Value{}, arityErr("join", 1, len(args))
		}
		sep := args[0].Display()
		parts := make([]string, len(obj.Vec))
		for i, v := range obj.Vec {
			parts[i] = v.Display()
		}
		return value.StringOf(strings.Join(parts, sep)), nil
	case "shuffle":
		rand.Shuffle(len(obj.Vec), func(i, j int) { obj.Vec[i], obj.Vec[j] = obj.Vec[j], obj.Vec[i] })
		return value.IntOf(0), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for Vector", method)
	}
}

func methodMap(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	if obj.MapVal == nil {
		obj.MapVal = map[string]value.Value{}
	}
	switch method {
	case "insert":
		if len(args) != 2 {
			return value.Value{}, arityErr("insert", 2, len(args))
		}
		obj.MapVal[args[0].Display()] = args[1]
		return value.IntOf(0), nil
	case "remove":
		if len(args) != 1 {
			return value.Value{}, arityErr("remove", 1, len(args))
		}
		key := args[0].Display()
		v, ok := obj.MapVal[key]
		if !ok {
			return value.Value{}, fmt.Errorf("key not found")
		}
		delete(obj.MapVal, key)
		return v, nil
	case "get":
		if len(args) != 1 {
			return value.Value{}, arityErr("get", 1, len(args))
		}
		v, ok := obj.MapVal[args[0].Display()]
		if !ok {
			return value.Value{}, fmt.Errorf("key not found")
		}
		return v, nil
	case "len":
		return value.IntOf(int32(len(obj.MapVal))), nil
	case "contains":
		if len(args) != 1 {
			return value.Value{}, arityErr("contains", 1, len(args))
		}
		_, ok := obj.MapVal[args[0].Display()]
		return value.BoolOf(ok), nil
	case "keys":
		keys := make([]string, 0, len(obj.MapVal))
		for k := range obj.MapVal {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.StringOf(k)
		}
		return value.VectorOf(out), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for Map", method)
	}
}

func methodTuple(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	if method == "len" {
		return value.IntOf(int32(len(obj.Tuple))), nil
	}
	return value.Value{}, fmt.Errorf("unknown method %q for Tuple", method)
}

func methodTime(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "elapsed":
		return value.FloatOf(time.Since(obj.T).Seconds()), nil
	case "timestamp":
		return value.IntOf(int32(obj.T.Unix())), nil
	case "date":
		return value.StringOf(obj.T.Local().Format("2006-01-02")), nil
	case "time":
		return value.StringOf(obj.T.Local().Format("15:04:05")), nil
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for Time", method)
	}
}

func methodString(obj *value.Value, method string, args []value.Value) (value.Value, error) {
	s := obj.S
	switch method {
	case "len":
		return value.IntOf(int32(len([]rune(s)))), nil
	case "to_upper":
		return value.StringOf(strings.ToUpper(s)), nil
	case "to_lower":
		return value.StringOf(strings.ToLower(s)), nil
	case "trim":
		return value.StringOf(strings.TrimSpace(s)), nil
	case "trim_start":
		return value.StringOf(strings.TrimLeft(s, " \t\n\r")), nil
	case "trim_end":
		return value.StringOf(strings.TrimRight(s, " \t\n\r")), nil
	case "contains":
		if len(args) != 1 {
			return value.Value{}, arityErr("contains", 1, len(args))
		}
		return value.BoolOf(strings.Contains(s, args[0].Display())), nil
	case "starts_with":
		if len(args) != 1 {
			return value.Value{}, arityErr("starts_with", 1, len(args))
		}
		return value.BoolOf(strings.HasPrefix(s, args[0].Display())), nil
	case "ends_with":
		if len(args) != 1 {
			return value.Value{}, arityErr("ends_with", 1, len(args))
		}
		return value.BoolOf(strings.HasSuffix(s, args[0].Display())), nil
	case "replace":
		if len(args) != 2 {
			return value.Value{}, arityErr("replace", 2, len(args))
		}
		return value.StringOf(strings.ReplaceAll(s, args[0].Display(), args[1].Display())), nil
	case "split":
		if len(args) != 1 {
			return value.Value{}, arityErr("split", 1, len(args))
		}
		parts := strings.Split(s, args[0].Display())
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.StringOf(p)
		}
		return value.VectorOf(out), nil
	case "index_of":
		if len(args) != 1 {
			return value.Value{}, arityErr("index_of", 1, len(args))
		}
		return value.IntOf(int32(strings.Index(s, args[0].Display()))), nil
	case "substring":
		if len(args) != 2 {
			return value.Value{}, arityErr("substring", 2, len(args))
		}
		startF, _ := args[0].AsFloat()
		endF, _ := args[1].AsFloat()
		start, end := int(startF), int(endF)
		if start > end {
			return value.Value{}, fmt.Errorf("start index cannot be greater than end index")
		}
		runes := []rune(s)
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start > len(runes) {
			start = len(runes)
		}
		return value.StringOf(string(runes[start:end])), nil
	case "to_int":
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot parse to Integer")
		}
		return value.IntOf(int32(i)), nil
	case "to_float":
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot parse to Float")
		}
		return value.FloatOf(f), nil
	case "is_match", "find_all", "regex_replace":
		return regexMethod(s, method, args)
	default:
		return value.Value{}, fmt.Errorf("unknown method %q for String", method)
	}
}
