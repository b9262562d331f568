package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects and aggregates per-handler request metrics.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	handlerMetrics map[string]*HandlerMetrics
}

// HandlerMetrics represents metrics for a specific handler.
type HandlerMetrics struct {
	requestCount  atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		handlerMetrics: make(map[string]*HandlerMetrics),
	}
}

// Global metrics instance.
var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records one handled request with its outcome and duration.
func (m *Metrics) RecordRequest(handler string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	hm := m.getHandlerMetrics(handler)
	hm.requestCount.Add(1)
	hm.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		hm.errorCount.Add(1)
	}
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getHandlerMetrics(handler string) *HandlerMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handlerMetrics[handler]; !ok {
		m.handlerMetrics[handler] = &HandlerMetrics{}
	}
	return m.handlerMetrics[handler]
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.handlerMetrics = make(map[string]*HandlerMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlerSnapshots := make(map[string]*HandlerMetricsSnapshot, len(m.handlerMetrics))
	for handler, hm := range m.handlerMetrics {
		count := hm.requestCount.Load()
		avg := int64(0)
		if count > 0 {
			avg = hm.totalDuration.Load() / count
		}
		handlerSnapshots[handler] = &HandlerMetricsSnapshot{
			RequestCount:    count,
			TotalDuration:   hm.totalDuration.Load(),
			ErrorCount:      hm.errorCount.Load(),
			AverageDuration: avg,
		}
	}

	return &MetricsSnapshot{
		RequestTotal:   m.requestTotal.Load(),
		RequestFailed:  m.requestFailed.Load(),
		HandlerMetrics: handlerSnapshots,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal   int64                              `json:"requestTotal"`
	RequestFailed  int64                              `json:"requestFailed"`
	HandlerMetrics map[string]*HandlerMetricsSnapshot `json:"handlers"`
}

// HandlerMetricsSnapshot represents metrics for a specific handler.
type HandlerMetricsSnapshot struct {
	RequestCount    int64 `json:"requestCount"`
	TotalDuration   int64 `json:"totalDurationMs"`
	ErrorCount      int64 `json:"errorCount"`
	AverageDuration int64 `json:"averageDurationMs"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
