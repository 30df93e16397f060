// Package server wires configuration, the sandbox host, the project store,
// the test generator and the HTTP API into one runnable service.
package server
