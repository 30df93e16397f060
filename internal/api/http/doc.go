// Package http provides the HTTP handlers and routing for the TestBench API.
//
// Endpoints:
//   - Health: / and /health
//   - Runs: POST /run (always 200 with a report once the body is valid)
//   - Generation: POST /generate
//   - Projects: /projects, /projects/:id, /projects/:id/run
//   - Statistics: /stats
//
// Errors are returned as {"error": "..."} with a matching status code.
package http
