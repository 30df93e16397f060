// Package middleware provides gin middleware shared by the HTTP server:
// CORS and per-IP or global rate limiting.
package middleware
