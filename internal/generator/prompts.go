package generator

import "fmt"

// SuiteInstruction is the system prompt for full test suites
const SuiteInstruction = `You are an expert JavaScript/TypeScript unit testing assistant.
Write comprehensive unit tests for the provided code using Jest-like syntax.
Output ONLY the test code. Do not wrap it in markdown code blocks.
Do not provide explanations outside the code.

Environment:
- Global describe, it (alias test) and expect are available.
- expect(value) supports toBe, toEqual, toBeDefined, toBeUndefined, toBeNull, toBeNaN,
  toBeTruthy, toBeFalsy, toBeGreaterThan, toBeLessThan, toBeInstanceOf, toContain and toThrow.
- There is no .not modifier and no async support; tests run synchronously.
- console.log, console.error, console.warn and console.info are captured per test.
- Do NOT use require or import. The functions from the user's code are already in global scope.
- Focus on edge cases, error handling and typical usage.`

// CaseInstruction is the system prompt for a single requested test case
const CaseInstruction = `You are an expert unit testing assistant.
Write a SINGLE test case (usually one it block) for the provided source code,
following the user's request.

Rules:
1. Output ONLY the JavaScript code for the test case.
2. Do NOT wrap it in markdown blocks.
3. expect, describe and it are global; use only the matchers listed for the suite prompt.
4. Do not include imports.`

func suitePrompt(source string) string {
	return fmt.Sprintf("Generate unit tests for this code:\n\n%s", source)
}

func casePrompt(source, instruction string) string {
	return fmt.Sprintf("Source Code:\n%s\n\nUser Request: %s", source, instruction)
}
