/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the backend
service, tracking HTTP requests, test runs, generator calls and stored
projects. Every Metrics value owns its registry, so several servers (or
tests) can coexist in one process.

# Features

- HTTP request metrics (latency, throughput, size)
- Test run metrics (outcome, duration, in-flight units, test statuses)
- Generator call metrics (provider, status, latency)
- Service call timers
- Go runtime and process collectors, uptime
- RunStats: mean, median and p95 over a window of recent runs

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Observe sandbox runs
	host := sandbox.NewHost(cfg, logger, sandbox.WithObserver(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "store", "create")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
