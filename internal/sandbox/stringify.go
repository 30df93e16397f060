package sandbox

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

const (
	// unserializable replaces values that cannot be printed
	unserializable = "[Circular/Unserializable]"

	stackOverflowMessage = "RangeError: Maximum call stack size exceeded"
)

// safeString renders a value for log and assertion messages. Strings come
// back verbatim, plain objects as indented JSON, everything else through
// String(). It never throws into the VM.
func (r *Runtime) safeString(v goja.Value) string {
	if v == nil {
		return "undefined"
	}

	obj, isObject := v.(*goja.Object)
	if !isObject {
		return v.String()
	}

	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return r.callString(r.helpers.str, v)
	}

	out, err := r.helpers.stringify(goja.Undefined(), v, r.vm.ToValue(2))
	if err != nil {
		rethrowInterrupt(err)
		return unserializable
	}
	if out == nil || goja.IsUndefined(out) {
		return "undefined"
	}
	return out.String()
}

// callString invokes a one-argument JS helper returning a string
func (r *Runtime) callString(fn goja.Callable, v goja.Value) string {
	out, err := fn(goja.Undefined(), v)
	if err != nil {
		rethrowInterrupt(err)
		return unserializable
	}
	return out.String()
}

// joinArgs renders console arguments separated by spaces
func (r *Runtime) joinArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = r.safeString(arg)
	}
	return strings.Join(parts, " ")
}

// canonical encodes a value structurally for toEqual. Unlike JSON it keeps
// undefined, NaN and the infinities as distinct tokens and sorts object keys.
func (r *Runtime) canonical(v goja.Value) string {
	var b strings.Builder
	r.writeCanonical(&b, v, make(map[*goja.Object]bool))
	return b.String()
}

func (r *Runtime) writeCanonical(b *strings.Builder, v goja.Value, seen map[*goja.Object]bool) {
	if v == nil || goja.IsUndefined(v) {
		b.WriteString("undefined")
		return
	}
	if goja.IsNull(v) {
		b.WriteString("null")
		return
	}

	obj, isObject := v.(*goja.Object)
	if !isObject {
		writePrimitive(b, v)
		return
	}

	if seen[obj] {
		b.WriteString("[Circular]")
		return
	}
	seen[obj] = true
	defer delete(seen, obj)

	if _, isFunc := goja.AssertFunction(obj); isFunc {
		name := "anonymous"
		if n := obj.Get("name"); n != nil && isString(n) && n.String() != "" {
			name = n.String()
		}
		b.WriteString("[Function " + name + "]")
		return
	}

	switch obj.ClassName() {
	case "Array":
		length := obj.Get("length").ToInteger()
		b.WriteByte('[')
		for i := int64(0); i < length; i++ {
			r.checkpoint(i)
			if i > 0 {
				b.WriteByte(',')
			}
			r.writeCanonical(b, obj.Get(strconv.FormatInt(i, 10)), seen)
		}
		b.WriteByte(']')
	case "Date", "RegExp":
		b.WriteString(obj.ClassName())
		b.WriteByte('(')
		b.WriteString(r.callString(r.helpers.str, obj))
		b.WriteByte(')')
	case "Number":
		r.writeBoxed(b, "Number", r.helpers.numberValue, obj, seen)
	case "String":
		r.writeBoxed(b, "String", r.helpers.stringValue, obj, seen)
	case "Boolean":
		r.writeBoxed(b, "Boolean", r.helpers.booleanValue, obj, seen)
	case "Map":
		r.writeBoxed(b, "Map", r.helpers.mapEntries, obj, seen)
	case "Set":
		r.writeBoxed(b, "Set", r.helpers.setValues, obj, seen)
	default:
		keys := obj.Keys()
		sort.Strings(keys)
		b.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(key))
			b.WriteByte(':')
			r.writeCanonical(b, obj.Get(key), seen)
		}
		b.WriteByte('}')
	}
}

// writeBoxed encodes an object through the value a helper extracts from it,
// tagged with its class so a boxed 1 never equals a plain 1
func (r *Runtime) writeBoxed(b *strings.Builder, class string, extract goja.Callable, obj *goja.Object, seen map[*goja.Object]bool) {
	inner, err := extract(goja.Undefined(), obj)
	if err != nil {
		rethrowInterrupt(err)
		b.WriteString(unserializable)
		return
	}
	b.WriteString(class)
	b.WriteByte('(')
	r.writeCanonical(b, inner, seen)
	b.WriteByte(')')
}

func writePrimitive(b *strings.Builder, v goja.Value) {
	switch x := v.Export().(type) {
	case string:
		b.WriteString(strconv.Quote(x))
	case float64:
		switch {
		case math.IsNaN(x):
			b.WriteString("NaN")
		case math.IsInf(x, 1):
			b.WriteString("Infinity")
		case math.IsInf(x, -1):
			b.WriteString("-Infinity")
		default:
			b.WriteString(v.String())
		}
	default:
		b.WriteString(v.String())
	}
}

// isNaN reports whether v is the number NaN, without coercion
func isNaN(v goja.Value) bool {
	if v == nil {
		return false
	}
	if _, isObject := v.(*goja.Object); isObject {
		return false
	}
	f, ok := v.Export().(float64)
	return ok && math.IsNaN(f)
}

// isString reports whether v is a string primitive
func isString(v goja.Value) bool {
	if v == nil {
		return false
	}
	if _, isObject := v.(*goja.Object); isObject {
		return false
	}
	_, ok := v.Export().(string)
	return ok
}

// sameValueZero is the equality used by Array.prototype.includes
func sameValueZero(a, b goja.Value) bool {
	if a == nil {
		a = goja.Undefined()
	}
	if b == nil {
		b = goja.Undefined()
	}
	if isNaN(a) && isNaN(b) {
		return true
	}
	return a.StrictEquals(b)
}

// errorMessage extracts the message of a thrown value. Error objects give
// their message property; any other thrown value is rendered safely.
func (r *Runtime) errorMessage(err error) string {
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return stackOverflowMessage
	}

	var exc *goja.Exception
	if !errors.As(err, &exc) {
		return err.Error()
	}

	val := exc.Value()
	if obj, ok := val.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			if isString(msg) {
				return msg.String()
			}
			return r.safeString(msg)
		}
	}
	return r.safeString(val)
}

// rethrowInterrupt re-raises a VM interrupt caught by a nested call so the
// framework never swallows termination.
func rethrowInterrupt(err error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		panic(interrupted)
	}
}
