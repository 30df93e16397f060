package sandbox

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// matcherFunc is an alias so goja binds matchers as native functions
type matcherFunc = func(call goja.FunctionCall) goja.Value

// newMatcher builds the object returned by expect(actual)
func (r *Runtime) newMatcher(actual goja.Value) *goja.Object {
	m := r.vm.NewObject()

	matchers := map[string]matcherFunc{
		"toBe": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			if !actual.StrictEquals(expected) && !(isNaN(actual) && isNaN(expected)) {
				r.fail("Expected %s but got %s", r.safeString(expected), r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toEqual": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			if r.canonical(actual) != r.canonical(expected) {
				r.fail("Expected %s but got %s", r.safeString(expected), r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeDefined": func(call goja.FunctionCall) goja.Value {
			if goja.IsUndefined(actual) {
				r.fail("Expected value to be defined but got undefined")
			}
			return goja.Undefined()
		},
		"toBeUndefined": func(call goja.FunctionCall) goja.Value {
			if !goja.IsUndefined(actual) {
				r.fail("Expected undefined but got %s", r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeNull": func(call goja.FunctionCall) goja.Value {
			if !goja.IsNull(actual) {
				r.fail("Expected null but got %s", r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeNaN": func(call goja.FunctionCall) goja.Value {
			if !isNaN(actual) {
				r.fail("Expected NaN but got %s", r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeTruthy": func(call goja.FunctionCall) goja.Value {
			if !actual.ToBoolean() {
				r.fail("Expected %s to be truthy", r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeFalsy": func(call goja.FunctionCall) goja.Value {
			if actual.ToBoolean() {
				r.fail("Expected %s to be falsy", r.safeString(actual))
			}
			return goja.Undefined()
		},
		"toBeGreaterThan": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			if !r.compare(r.helpers.greaterThan, actual, expected) {
				r.fail("Expected %s to be greater than %s", r.safeString(actual), r.safeString(expected))
			}
			return goja.Undefined()
		},
		"toBeLessThan": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			if !r.compare(r.helpers.lessThan, actual, expected) {
				r.fail("Expected %s to be less than %s", r.safeString(actual), r.safeString(expected))
			}
			return goja.Undefined()
		},
		"toBeInstanceOf": func(call goja.FunctionCall) goja.Value {
			ctor := call.Argument(0)
			if !r.compare(r.helpers.instanceOf, actual, ctor) {
				r.fail("Expected %s to be an instance of %s", r.safeString(actual), r.constructorName(ctor))
			}
			return goja.Undefined()
		},
		"toContain": func(call goja.FunctionCall) goja.Value {
			item := call.Argument(0)
			if !r.contains(actual, item) {
				r.fail("Expected %s to contain %s", r.safeString(actual), r.safeString(item))
			}
			return goja.Undefined()
		},
		"toThrow": func(call goja.FunctionCall) goja.Value {
			fn, ok := goja.AssertFunction(actual)
			if !ok {
				r.fail("toThrow() requires a function but got %s", r.safeString(actual))
			}
			if _, err := fn(goja.Undefined()); err != nil {
				rethrowInterrupt(err)
				return goja.Undefined()
			}
			r.fail("Expected function to throw but it returned normally")
			return goja.Undefined()
		},
	}

	for name, fn := range matchers {
		m.Set(name, fn)
	}
	return m
}

// fail throws an assertion error into the VM
func (r *Runtime) fail(format string, args ...interface{}) {
	panic(r.newError(format, args...))
}

// compare applies a binary JS operator helper. An operator that throws,
// such as instanceof with a non-callable right side, fails the assertion
// with the thrown message.
func (r *Runtime) compare(op goja.Callable, a, b goja.Value) bool {
	out, err := op(goja.Undefined(), a, b)
	if err != nil {
		rethrowInterrupt(err)
		r.fail("%s", r.errorMessage(err))
	}
	return out.ToBoolean()
}

// contains implements toContain for arrays and strings
func (r *Runtime) contains(collection, item goja.Value) bool {
	if isString(collection) {
		return strings.Contains(collection.String(), r.callString(r.helpers.str, item))
	}

	obj, ok := collection.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		r.fail("toContain() requires an array or string but got %s", r.safeString(collection))
	}

	length := obj.Get("length").ToInteger()
	for i := int64(0); i < length; i++ {
		r.checkpoint(i)
		if sameValueZero(obj.Get(strconv.FormatInt(i, 10)), item) {
			return true
		}
	}
	return false
}

// constructorName renders a constructor for messages
func (r *Runtime) constructorName(ctor goja.Value) string {
	if obj, ok := ctor.(*goja.Object); ok {
		if name := obj.Get("name"); name != nil && isString(name) && name.String() != "" {
			return name.String()
		}
	}
	return r.safeString(ctor)
}
