package sandbox

import (
	"errors"
	"time"

	"github.com/dop251/goja"
)

const nestedTestMessage = "Nested it() calls are not supported"

// setupGlobals installs the test framework and strips host-only globals
func (r *Runtime) setupGlobals() error {
	// Remove dangerous globals
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	// Timers are inert, test bodies are synchronous
	noop := func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}

	console := r.vm.NewObject()
	console.Set("log", r.makeConsoleFunc(KindLog))
	console.Set("error", r.makeConsoleFunc(KindError))
	console.Set("warn", r.makeConsoleFunc(KindWarn))
	console.Set("info", r.makeConsoleFunc(KindInfo))

	globals := map[string]interface{}{
		"console":  console,
		"describe": r.describe,
		"it":       r.it,
		"test":     r.it,
		"expect":   r.expect,
	}
	for name, value := range globals {
		if err := r.vm.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(kind LogKind) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		r.record(kind, r.joinArgs(call.Arguments), true)
		return goja.Undefined()
	}
}

// describe groups tests in the log. A throwing body is logged, never fatal.
func (r *Runtime) describe(call goja.FunctionCall) goja.Value {
	name := r.safeString(call.Argument(0))

	r.record(KindGroup, name, false)

	if err := r.invoke(call.Argument(1)); err != nil {
		rethrowInterrupt(err)
		r.record(KindError, "Error in describe: "+r.errorMessage(err), false)
	}

	r.record(KindGroupEnd, name, false)
	return goja.Undefined()
}

// it runs one test body and records exactly one outcome for it
func (r *Runtime) it(call goja.FunctionCall) goja.Value {
	if r.testActive {
		panic(r.newError(nestedTestMessage))
	}

	outcome := TestOutcome{
		Name: r.safeString(call.Argument(0)),
	}

	r.testActive = true
	r.testLogs = []LogEntry{}

	start := time.Now()
	err := r.invoke(call.Argument(1))
	outcome.Duration = time.Since(start).Milliseconds()

	outcome.Logs = r.testLogs
	r.testActive = false
	r.testLogs = nil

	if err != nil {
		rethrowInterrupt(err)
		outcome.Status = StatusFail
		outcome.Error = r.errorMessage(err)
	} else {
		outcome.Status = StatusPass
	}

	r.results = append(r.results, outcome)
	return goja.Undefined()
}

// expect logs the actual value and returns its matchers
func (r *Runtime) expect(call goja.FunctionCall) goja.Value {
	actual := call.Argument(0)
	r.record(KindInfo, "Actual Value: "+r.safeString(actual), true)
	return r.newMatcher(actual)
}

// invoke calls fn with no arguments. A non-callable value fails like calling
// it would in JS.
func (r *Runtime) invoke(fn goja.Value) error {
	body, ok := goja.AssertFunction(fn)
	if !ok {
		return errors.New(r.safeString(fn) + " is not a function")
	}
	_, err := body(goja.Undefined())
	return err
}
