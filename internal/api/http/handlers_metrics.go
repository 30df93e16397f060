package http

import (
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking; a nil collector is a no-op
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackStoreOperation times a project store call; pass the call's error to the returned func
func (hm *HandlerMetrics) TrackStoreOperation(operation string) func(err error) {
	if hm == nil || hm.metrics == nil {
		return func(error) {}
	}
	timer := monitoring.NewTimer(hm.metrics, "project_store", operation)
	return func(err error) {
		if err != nil {
			timer.Stop("error")
			return
		}
		timer.Stop("success")
	}
}

// SetProjects publishes the current project count
func (hm *HandlerMetrics) SetProjects(count int) {
	if hm == nil || hm.metrics == nil {
		return
	}
	hm.metrics.SetProjects(count)
}

// Stats returns the run statistics summary, if metrics are enabled
func (hm *HandlerMetrics) Stats() (monitoring.RunSummary, bool) {
	if hm == nil || hm.metrics == nil {
		return monitoring.RunSummary{}, false
	}
	return hm.metrics.Stats().Summary(), true
}

// Snapshot returns the HTTP metrics snapshot, if metrics are enabled
func (hm *HandlerMetrics) Snapshot() (monitoring.MetricsSnapshot, bool) {
	if hm == nil || hm.metrics == nil {
		return monitoring.MetricsSnapshot{}, false
	}
	return hm.metrics.Snapshot(), true
}
