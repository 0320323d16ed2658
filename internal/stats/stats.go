// Package stats tracks per-worker request counters. Each worker process owns
// exactly one Stats; nothing is shared across workers and nothing survives a
// restart.
package stats

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nightglow-io/nightglow/internal/util"
)

type Stats struct {
	workerID  string
	pid       int
	startTime time.Time

	requests atomic.Uint64
	errors   atomic.Uint64

	mu      sync.Mutex
	totalMs float64
}

func New() *Stats {
	return &Stats{
		workerID:  uuid.NewString(),
		pid:       os.Getpid(),
		startTime: time.Now(),
	}
}

func (s *Stats) WorkerID() string { return s.workerID }

// RecordRequest counts one served payload request and accumulates the time
// spent producing its response.
func (s *Stats) RecordRequest(elapsedMs float64) {
	s.requests.Add(1)
	s.mu.Lock()
	s.totalMs += elapsedMs
	s.mu.Unlock()
}

func (s *Stats) RecordError() {
	s.errors.Add(1)
}

func (s *Stats) Requests() uint64 { return s.requests.Load() }

func (s *Stats) Errors() uint64 { return s.errors.Load() }

// AvgResponseTimeMs returns the mean handler latency rounded to two decimals,
// or 0 before the first request.
func (s *Stats) AvgResponseTimeMs() float64 {
	count := s.requests.Load()
	if count == 0 {
		return 0
	}
	s.mu.Lock()
	total := s.totalMs
	s.mu.Unlock()
	return util.Round2(total / float64(count))
}

type HealthSnapshot struct {
	Status            string  `json:"status"`
	Worker            string  `json:"worker"`
	PID               int     `json:"pid"`
	UptimeMs          int64   `json:"uptime_ms"`
	RequestsHandled   uint64  `json:"requests_handled"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	Errors            uint64  `json:"errors"`
}

func (s *Stats) Snapshot() HealthSnapshot {
	return HealthSnapshot{
		Status:            "healthy",
		Worker:            s.workerID,
		PID:               s.pid,
		UptimeMs:          time.Since(s.startTime).Milliseconds(),
		RequestsHandled:   s.requests.Load(),
		AvgResponseTimeMs: s.AvgResponseTimeMs(),
		Errors:            s.errors.Load(),
	}
}

func (s *Stats) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	_, _ = w.Write([]byte(s.Render()))
}

// Render produces the scrape exposition: one TYPE line per series followed by
// the worker-labelled value.
func (s *Stats) Render() string {
	snap := s.Snapshot()
	label := "{worker=\"" + s.workerID + "\"} "

	var b strings.Builder
	b.WriteString("# TYPE nightglow_requests_total counter\n")
	b.WriteString("nightglow_requests_total")
	b.WriteString(label)
	b.WriteString(strconv.FormatUint(snap.RequestsHandled, 10))
	b.WriteString("\n")
	b.WriteString("# TYPE nightglow_errors_total counter\n")
	b.WriteString("nightglow_errors_total")
	b.WriteString(label)
	b.WriteString(strconv.FormatUint(snap.Errors, 10))
	b.WriteString("\n")
	b.WriteString("# TYPE nightglow_avg_response_time_ms gauge\n")
	b.WriteString("nightglow_avg_response_time_ms")
	b.WriteString(label)
	b.WriteString(strconv.FormatFloat(snap.AvgResponseTimeMs, 'f', -1, 64))
	b.WriteString("\n")
	b.WriteString("# TYPE nightglow_uptime_ms gauge\n")
	b.WriteString("nightglow_uptime_ms")
	b.WriteString(label)
	b.WriteString(strconv.FormatInt(snap.UptimeMs, 10))
	b.WriteString("\n")
	return b.String()
}
