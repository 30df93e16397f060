package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"gonum.org/v1/gonum/stat"
)

// DefaultStatsWindow is the number of recent runs kept for quantiles
const DefaultStatsWindow = 1024

// RunStats tracks run totals and a bounded window of recent durations
type RunStats struct {
	mu       sync.Mutex
	window   []float64 // milliseconds, ring buffer
	next     int
	full     bool
	runs     int64
	passed   int64
	failed   int64
	outcomes map[sandbox.Outcome]int64
}

// RunSummary is the JSON view of RunStats
type RunSummary struct {
	Runs        int64                     `json:"runs"`
	TestsPassed int64                     `json:"tests_passed"`
	TestsFailed int64                     `json:"tests_failed"`
	Outcomes    map[sandbox.Outcome]int64 `json:"outcomes"`
	Window      int                       `json:"window"`
	MeanMs      float64                   `json:"mean_ms"`
	MedianMs    float64                   `json:"median_ms"`
	P95Ms       float64                   `json:"p95_ms"`
	StdDevMs    float64                   `json:"stddev_ms"`
}

// NewRunStats creates a tracker keeping size recent durations
func NewRunStats(size int) *RunStats {
	if size <= 0 {
		size = DefaultStatsWindow
	}
	return &RunStats{
		window:   make([]float64, size),
		outcomes: make(map[sandbox.Outcome]int64),
	}
}

// Record adds one finished run
func (s *RunStats) Record(outcome sandbox.Outcome, duration time.Duration, passed, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.passed += int64(passed)
	s.failed += int64(failed)
	s.outcomes[outcome]++

	s.window[s.next] = float64(duration.Microseconds()) / 1000
	s.next++
	if s.next == len(s.window) {
		s.next = 0
		s.full = true
	}
}

// Summary computes totals and duration statistics over the window
func (s *RunStats) Summary() RunSummary {
	s.mu.Lock()
	n := s.next
	if s.full {
		n = len(s.window)
	}
	samples := make([]float64, n)
	copy(samples, s.window[:n])

	summary := RunSummary{
		Runs:        s.runs,
		TestsPassed: s.passed,
		TestsFailed: s.failed,
		Outcomes:    make(map[sandbox.Outcome]int64, len(s.outcomes)),
		Window:      n,
	}
	for k, v := range s.outcomes {
		summary.Outcomes[k] = v
	}
	s.mu.Unlock()

	if n == 0 {
		return summary
	}

	sort.Float64s(samples)
	summary.MeanMs = stat.Mean(samples, nil)
	summary.MedianMs = stat.Quantile(0.5, stat.Empirical, samples, nil)
	summary.P95Ms = stat.Quantile(0.95, stat.Empirical, samples, nil)
	if n > 1 {
		summary.StdDevMs = stat.StdDev(samples, nil)
	}
	return summary
}
