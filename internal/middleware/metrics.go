package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal        atomic.Uint64
	RequestsInProgress   atomic.Int64
	RequestsSuccess      atomic.Uint64
	RequestsFailed       atomic.Uint64
	AnalysesTotal        atomic.Uint64
	AnalysesInvalid      atomic.Uint64
	AnalysesFallback     atomic.Uint64
	DiagnosticsRuns      atomic.Uint64
	DiagnosticsUnhealthy atomic.Uint64
	StartTime            time.Time
}

// DefaultMetrics is the process-wide metrics set.
var DefaultMetrics = NewMetrics()

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// ObserveAnalysis records the outcome of one analysis request.
func (m *Metrics) ObserveAnalysis(invalid, usedFallback bool) {
	m.AnalysesTotal.Add(1)
	if invalid {
		m.AnalysesInvalid.Add(1)
	}
	if usedFallback {
		m.AnalysesFallback.Add(1)
	}
}

// ObserveDiagnostics records the verdict of one diagnostics run.
func (m *Metrics) ObserveDiagnostics(healthy bool) {
	m.DiagnosticsRuns.Add(1)
	if !healthy {
		m.DiagnosticsUnhealthy.Add(1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":        m.RequestsTotal.Load(),
		"requests_in_progress":  m.RequestsInProgress.Load(),
		"requests_success":      m.RequestsSuccess.Load(),
		"requests_failed":       m.RequestsFailed.Load(),
		"analyses_total":        m.AnalysesTotal.Load(),
		"analyses_invalid":      m.AnalysesInvalid.Load(),
		"analyses_fallback":     m.AnalysesFallback.Load(),
		"diagnostics_runs":      m.DiagnosticsRuns.Load(),
		"diagnostics_unhealthy": m.DiagnosticsUnhealthy.Load(),
		"uptime_seconds":        time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Track counts requests and their outcome by status code.
func (m *Metrics) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
