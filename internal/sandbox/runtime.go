package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// helperSource builds operator helpers bound to the pristine String, JSON,
// Number, Boolean, Map and Set globals, so user code that reassigns them
// cannot break the framework.
const helperSource = `(function (String, JSON, Number, Boolean, Map, Set) {
	var call = Function.prototype.call;
	var numberValue = call.bind(Number.prototype.valueOf);
	var stringValue = call.bind(String.prototype.valueOf);
	var booleanValue = call.bind(Boolean.prototype.valueOf);
	var mapForEach = call.bind(Map.prototype.forEach);
	var setForEach = call.bind(Set.prototype.forEach);
	var keep = function (k, v) { return v; };
	return {
		str: function (v) { return String(v); },
		stringify: function (v, space) { return JSON.stringify(v, keep, space); },
		instanceOf: function (a, b) { return a instanceof b; },
		greaterThan: function (a, b) { return a > b; },
		lessThan: function (a, b) { return a < b; },
		numberValue: function (v) { return numberValue(v); },
		stringValue: function (v) { return stringValue(v); },
		booleanValue: function (v) { return booleanValue(v); },
		mapEntries: function (m) {
			var out = [];
			mapForEach(m, function (v, k) { out[out.length] = [k, v]; });
			return out;
		},
		setValues: function (s) {
			var out = [];
			setForEach(s, function (v) { out[out.length] = v; });
			return out;
		},
		tick: function () {}
	};
})(String, JSON, Number, Boolean, Map, Set)`

// checkpointEvery is how many iterations a Go-side loop over VM values runs
// between interrupt checks
const checkpointEvery = 1024

// helpers are JS functions the framework calls from Go
type helpers struct {
	str          goja.Callable
	stringify    goja.Callable
	instanceOf   goja.Callable
	greaterThan  goja.Callable
	lessThan     goja.Callable
	numberValue  goja.Callable
	stringValue  goja.Callable
	booleanValue goja.Callable
	mapEntries   goja.Callable
	setValues    goja.Callable
	tick         goja.Callable
}

// Runtime is one execution unit's VM plus the framework state of a single
// run. It is not safe for concurrent use; only Interrupt may be called from
// another goroutine.
type Runtime struct {
	vm        *goja.Runtime
	config    Config
	helpers   helpers
	errorCtor *goja.Object

	logs       []LogEntry
	results    []TestOutcome
	testLogs   []LogEntry
	testActive bool
}

// New creates a fresh runtime with the test framework installed
func New(config Config) (*Runtime, error) {
	vm := goja.New()

	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	r := &Runtime{
		vm:      vm,
		config:  config,
		logs:    []LogEntry{},
		results: []TestOutcome{},
	}

	if err := r.loadHelpers(); err != nil {
		return nil, fmt.Errorf("failed to load helpers: %w", err)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, fmt.Errorf("failed to install framework: %w", err)
	}

	return r, nil
}

// Execute runs the sanitized source, then the sanitized tests, in the same
// global scope and aggregates the report.
func (r *Runtime) Execute(req Request) Report {
	if _, err := r.vm.RunScript("source.js", Sanitize(req.SourceCode)); err != nil {
		return r.abort(SourceErrorPrefix, err)
	}

	if _, err := r.vm.RunScript("tests.js", Sanitize(req.TestCode)); err != nil {
		return r.abort(TestErrorPrefix, err)
	}

	return Report{
		Success: true,
		Results: r.results,
		Logs:    r.logs,
	}
}

// Interrupt stops the VM at the next instruction
func (r *Runtime) Interrupt(reason string) {
	r.vm.Interrupt(reason)
}

// abort builds a fatal report. Logs gathered so far are kept, results are not.
func (r *Runtime) abort(prefix string, err error) Report {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return failedReport(fmt.Sprintf("%s%v", CancelledPrefix, interrupted.Value()))
	}

	return Report{
		Success: false,
		Results: []TestOutcome{},
		Logs:    r.logs,
		Error:   prefix + r.errorMessage(err),
	}
}

// loadHelpers compiles the operator helpers
func (r *Runtime) loadHelpers() error {
	val, err := r.vm.RunString(helperSource)
	if err != nil {
		return err
	}
	obj := val.ToObject(r.vm)

	bind := func(name string) (goja.Callable, error) {
		fn, ok := goja.AssertFunction(obj.Get(name))
		if !ok {
			return nil, fmt.Errorf("helper %s is not a function", name)
		}
		return fn, nil
	}

	bindings := []struct {
		name string
		dst  *goja.Callable
	}{
		{"str", &r.helpers.str},
		{"stringify", &r.helpers.stringify},
		{"instanceOf", &r.helpers.instanceOf},
		{"greaterThan", &r.helpers.greaterThan},
		{"lessThan", &r.helpers.lessThan},
		{"numberValue", &r.helpers.numberValue},
		{"stringValue", &r.helpers.stringValue},
		{"booleanValue", &r.helpers.booleanValue},
		{"mapEntries", &r.helpers.mapEntries},
		{"setValues", &r.helpers.setValues},
		{"tick", &r.helpers.tick},
	}
	for _, b := range bindings {
		if *b.dst, err = bind(b.name); err != nil {
			return err
		}
	}

	r.errorCtor = r.vm.Get("Error").ToObject(r.vm)
	return nil
}

// checkpoint surfaces a pending interrupt inside long Go loops. The VM only
// polls its interrupt flag while running JS, so entering a trivial helper
// is enough to raise the uncatchable InterruptedError.
func (r *Runtime) checkpoint(i int64) {
	if i%checkpointEvery != 0 {
		return
	}
	if _, err := r.helpers.tick(goja.Undefined()); err != nil {
		rethrowInterrupt(err)
	}
}

// newError constructs a JS Error to be thrown with panic
func (r *Runtime) newError(format string, args ...interface{}) *goja.Object {
	msg := fmt.Sprintf(format, args...)
	obj, err := r.vm.New(r.errorCtor, r.vm.ToValue(msg))
	if err != nil {
		return r.vm.NewGoError(errors.New(msg))
	}
	return obj
}

// record appends an entry to the global stream and, when scoped and a test
// is running, to that test's buffer
func (r *Runtime) record(kind LogKind, message string, scoped bool) {
	entry := LogEntry{
		Type:      kind,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
	r.logs = append(r.logs, entry)
	if scoped && r.testActive {
		r.testLogs = append(r.testLogs, entry)
	}
}
