/*
Package sandbox runs user-supplied JavaScript tests against user-supplied
source code inside a disposable goja runtime.

# Overview

Every invocation gets its own execution unit: a fresh goja VM with an
isolated global scope that is thrown away after one use. Inside the unit the
runtime installs a small Jest-like framework:

  - describe(name, body): grouping, logs only
  - it(name, body) / test(name, body): one pass/fail outcome per call
  - expect(actual): matchers toBe, toEqual, toBeDefined, toBeUndefined,
    toBeNull, toBeNaN, toBeTruthy, toBeFalsy, toBeGreaterThan,
    toBeLessThan, toBeInstanceOf, toContain, toThrow
  - console.log/info/warn/error: captured globally and per test

# Architecture

 1. Host: admission, deadline, disposal. Always returns exactly one Report.
 2. Unit: goroutine owning one Runtime, replies once on a buffered channel.
 3. Runtime: goja VM, framework globals, source then test execution.
 4. Sanitizer: textual removal of import/export syntax.

# Security Model

This is not a security boundary. Sandboxed code has no require, process,
module or timers, but nothing limits memory. The deadline is enforced with
goja's Interrupt, which stops the VM between instructions; a unit that is
interrupted never replies.

# Usage Example

	host := sandbox.NewHost(sandbox.DefaultConfig(), logger)
	report := host.Run(ctx, sandbox.Request{
		SourceCode: "function add(a, b) { return a + b; }",
		TestCode:   "it('adds', () => expect(add(1, 2)).toBe(3));",
	})
*/
package sandbox
