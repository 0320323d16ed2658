package loadgen

import (
	"sync"
	"time"
)

// Metrics is the shared accumulator all request loops record into. A single
// mutex serializes every record step; the reporter reads best-effort
// snapshots without blocking writers for long.
type Metrics struct {
	mu sync.Mutex

	start   time.Time
	total   uint64
	success uint64
	failed  uint64

	samples   []float64
	minMs     float64
	maxMs     float64
	statuses  map[int]uint64
	errorKind map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		start:     time.Now(),
		samples:   make([]float64, 0, 4096),
		minMs:     -1,
		maxMs:     -1,
		statuses:  make(map[int]uint64),
		errorKind: make(map[string]uint64),
	}
}

// Record stores one completed request. Every outcome, success or failure,
// contributes a latency sample.
func (m *Metrics) Record(latencyMs float64, status int, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if kind == "" {
		m.success++
	} else {
		m.failed++
		m.errorKind[kind]++
	}
	if status > 0 {
		m.statuses[status]++
	}
	m.samples = append(m.samples, latencyMs)
	if m.minMs < 0 || latencyMs < m.minMs {
		m.minMs = latencyMs
	}
	if m.maxMs < 0 || latencyMs > m.maxMs {
		m.maxMs = latencyMs
	}
}

type progress struct {
	elapsed     time.Duration
	total       uint64
	successRate float64
}

func (m *Metrics) progress() progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := progress{
		elapsed: time.Since(m.start),
		total:   m.total,
	}
	if m.total > 0 {
		p.successRate = float64(m.success) / float64(m.total) * 100
	}
	return p
}
