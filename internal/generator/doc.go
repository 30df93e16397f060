/*
Package generator writes unit tests for source code with a language model.

Providers:
  - gemini: generateContent REST API over resty, behind a circuit breaker
  - openai: any OpenAI-compatible chat completion endpoint

Model output is passed through CleanOutput so callers always get plain
program text.
*/
package generator
