package sandbox

import (
	"time"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Wall-clock budget per run
	MaxCallStackSize int           // goja call stack limit
	MaxConcurrent    int           // In-flight units per host
}

// DefaultConfig returns the interactive defaults
func DefaultConfig() Config {
	return Config{
		Timeout:          3 * time.Second,
		MaxCallStackSize: 1024,
		MaxConcurrent:    8,
	}
}

// Request is the payload of one run
type Request struct {
	SourceCode string `json:"code"`
	TestCode   string `json:"testCode"`
}

// LogKind classifies a log entry
type LogKind string

const (
	KindLog      LogKind = "log"
	KindError    LogKind = "error"
	KindWarn     LogKind = "warn"
	KindInfo     LogKind = "info"
	KindGroup    LogKind = "group"
	KindGroupEnd LogKind = "groupEnd"
)

// LogEntry represents console output or a group boundary
type LogEntry struct {
	Type      LogKind `json:"type"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"` // Unix millis
}

// TestStatus is the outcome of one it() call
type TestStatus string

const (
	StatusPass TestStatus = "pass"
	StatusFail TestStatus = "fail"
)

// TestOutcome is the record for one it() call
type TestOutcome struct {
	Name     string     `json:"name"`
	Status   TestStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
	Duration int64      `json:"duration"` // Millis spent inside the body
	Logs     []LogEntry `json:"logs"`
}

// Report is the single result of one run
type Report struct {
	Success bool          `json:"success"`
	Results []TestOutcome `json:"results"`
	Logs    []LogEntry    `json:"logs"`
	Error   string        `json:"error,omitempty"`
}

// Error message prefixes identifying the failure category
const (
	SourceErrorPrefix  = "Source Error: "
	TestErrorPrefix    = "Test Error: "
	RuntimeErrorPrefix = "Runtime Error: "
	TimeoutPrefix      = "Execution Timed Out"
	CancelledPrefix    = "Execution Cancelled: "
)

// Passed counts passing outcomes
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusPass {
			n++
		}
	}
	return n
}

// Failed counts failing outcomes
func (r Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// failedReport builds the fatal shape: no results, no logs
func failedReport(message string) Report {
	return Report{
		Success: false,
		Results: []TestOutcome{},
		Logs:    []LogEntry{},
		Error:   message,
	}
}
