/*
Package tracing provides distributed tracing for debugging production issues.

# Overview

This package implements lightweight tracing to follow a request through the
HTTP layer, the sandbox host, the project store and outbound generator calls.
It follows OpenTelemetry concepts but with a minimal implementation tailored
to the system's needs.

# Features

- Trace context propagation via HTTP headers
- Span creation and management with parent-child relationships
- Automatic trace ID generation
- HTTP middleware for automatic instrumentation
- Structured logging integration
- Low overhead with buffered span collection

# Usage

	// Create tracer
	tracer := tracing.New("testbench", logger)
	defer tracer.Close()

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Child span around an operation
	err := tracer.Trace(ctx, "sandbox.run", func(ctx context.Context, span *tracing.Span) error {
		span.SetTag("outcome", "completed")
		return nil
	})

	// Outbound propagation
	tracing.InjectTraceContext(ctx, req.Header)

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

# Performance

The tracing system is designed for minimal overhead:
- Buffered span collection (1000 spans)
- Async span processing
- Structured logging integration
- No external dependencies
*/
package tracing
