package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome labels a finished run
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeSourceError  Outcome = "source_error"
	OutcomeTestError    Outcome = "test_error"
	OutcomeRuntimeError Outcome = "runtime_error"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeCancelled    Outcome = "cancelled"
)

// Classify maps a report to its outcome label
func Classify(report Report) Outcome {
	switch {
	case report.Success:
		return OutcomeCompleted
	case strings.HasPrefix(report.Error, SourceErrorPrefix):
		return OutcomeSourceError
	case strings.HasPrefix(report.Error, TestErrorPrefix):
		return OutcomeTestError
	case strings.HasPrefix(report.Error, TimeoutPrefix):
		return OutcomeTimeout
	case strings.HasPrefix(report.Error, CancelledPrefix):
		return OutcomeCancelled
	default:
		return OutcomeRuntimeError
	}
}

// Observer receives run lifecycle events, typically for metrics
type Observer interface {
	RunStarted()
	RunFinished(outcome Outcome, duration time.Duration, report Report)
}

// Option configures a Host
type Option func(*Host)

// WithSpawner replaces the unit factory
func WithSpawner(spawn Spawner) Option {
	return func(h *Host) {
		h.spawn = spawn
	}
}

// WithObserver attaches a run observer
func WithObserver(observer Observer) Option {
	return func(h *Host) {
		h.observer = observer
	}
}

// Host runs each request in a fresh execution unit under a deadline
type Host struct {
	config   Config
	logger   *zap.Logger
	limiter  *Limiter
	spawn    Spawner
	observer Observer
}

// NewHost creates an execution host
func NewHost(config Config, logger *zap.Logger, opts ...Option) *Host {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Host{
		config:  config,
		logger:  logger,
		limiter: NewLimiter(config.MaxConcurrent),
		spawn:   NewVMUnit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Config returns the effective configuration
func (h *Host) Config() Config {
	return h.config
}

// Run executes one request and always returns exactly one report
func (h *Host) Run(ctx context.Context, req Request) Report {
	runID := uuid.NewString()
	start := time.Now()

	if h.observer != nil {
		h.observer.RunStarted()
	}

	var report Report
	release, err := h.limiter.Acquire(ctx)
	if err != nil {
		report = failedReport(CancelledPrefix + err.Error())
	} else {
		report = h.execute(ctx, req)
		release()
	}

	duration := time.Since(start)
	outcome := Classify(report)

	if h.observer != nil {
		h.observer.RunFinished(outcome, duration, report)
	}

	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", duration),
		zap.Int("passed", report.Passed()),
		zap.Int("failed", report.Failed()),
	}
	switch outcome {
	case OutcomeCompleted:
		h.logger.Debug("Run completed", fields...)
	case OutcomeTimeout, OutcomeRuntimeError, OutcomeCancelled:
		h.logger.Warn("Run aborted", append(fields, zap.String("error", report.Error))...)
	default:
		h.logger.Info("Run failed", append(fields, zap.String("error", report.Error))...)
	}

	return report
}

// execute spawns a unit and waits for its reply, the deadline or the caller
func (h *Host) execute(ctx context.Context, req Request) Report {
	unit := h.spawn(h.config)
	defer unit.Terminate()

	reply := make(chan Message, 1)

	timer := time.NewTimer(h.config.Timeout)
	defer timer.Stop()

	unit.Start(req, reply)

	select {
	case msg := <-reply:
		if msg.Fault != nil {
			return failedReport(RuntimeErrorPrefix + msg.Fault.Error())
		}
		if msg.Report == nil {
			return failedReport(RuntimeErrorPrefix + "unit replied without a report")
		}
		return normalize(*msg.Report)
	case <-timer.C:
		return failedReport(fmt.Sprintf("%s (%s limit)", TimeoutPrefix, h.config.Timeout))
	case <-ctx.Done():
		return failedReport(CancelledPrefix + ctx.Err().Error())
	}
}

// Stats returns admission statistics
func (h *Host) Stats() map[string]interface{} {
	stats := h.limiter.Stats()
	stats["timeout"] = h.config.Timeout.String()
	return stats
}

// Close stops admitting runs
func (h *Host) Close() error {
	return h.limiter.Close()
}

// normalize guarantees array fields serialize as arrays
func normalize(report Report) Report {
	if report.Results == nil {
		report.Results = []TestOutcome{}
	}
	if report.Logs == nil {
		report.Logs = []LogEntry{}
	}
	for i := range report.Results {
		if report.Results[i].Logs == nil {
			report.Results[i].Logs = []LogEntry{}
		}
	}
	return report
}
