package loadgen

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/nightglow-io/nightglow/internal/util"
)

// Summary is the finalized result of a run. Built once after all request
// loops have stopped; never mutated afterwards.
type Summary struct {
	Target      string
	Duration    time.Duration
	Concurrency int
	TargetRPS   int

	Total   uint64
	Success uint64
	Failed  uint64

	SuccessRate float64
	ActualRPS   float64

	MinMs  float64
	MaxMs  float64
	MeanMs float64
	P50Ms  float64
	P95Ms  float64
	P99Ms  float64

	StatusCodes map[int]uint64
	ErrorKinds  map[string]uint64
}

// Finalize reduces the accumulator into a Summary. Call exactly once, after
// every worker loop has returned.
func (m *Metrics) Finalize(cfg Config) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]float64, len(m.samples))
	copy(sorted, m.samples)
	sort.Float64s(sorted)

	s := Summary{
		Target:      cfg.URL,
		Duration:    cfg.Duration,
		Concurrency: cfg.Concurrency,
		TargetRPS:   cfg.TargetRPS,
		Total:       m.total,
		Success:     m.success,
		Failed:      m.failed,
		StatusCodes: make(map[int]uint64, len(m.statuses)),
		ErrorKinds:  make(map[string]uint64, len(m.errorKind)),
	}
	for code, n := range m.statuses {
		s.StatusCodes[code] = n
	}
	for kind, n := range m.errorKind {
		s.ErrorKinds[kind] = n
	}

	if m.total > 0 {
		s.SuccessRate = float64(m.success) / float64(m.total) * 100
	}
	elapsed := time.Since(m.start).Seconds()
	if elapsed > 0 {
		s.ActualRPS = float64(m.total) / elapsed
	}
	if len(sorted) > 0 {
		s.MinMs = sorted[0]
		s.MaxMs = sorted[len(sorted)-1]
		s.MeanMs = mean(sorted)
		s.P50Ms = percentile(sorted, 50)
		s.P95Ms = percentile(sorted, 95)
		s.P99Ms = percentile(sorted, 99)
	}
	return s
}

// percentile selects from an ascending-sorted slice by nearest rank:
// index ceil(p/100*n)-1, clamped to the slice bounds. No interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Print writes the human-readable run report.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Load Test Report ===")
	fmt.Fprintf(w, "Target:        %s\n", s.Target)
	fmt.Fprintf(w, "Duration:      %s (concurrency %d, target %d rps)\n", s.Duration, s.Concurrency, s.TargetRPS)
	fmt.Fprintf(w, "Requests:      %d total, %d ok, %d failed\n", s.Total, s.Success, s.Failed)
	fmt.Fprintf(w, "Success rate:  %.2f%%\n", s.SuccessRate)
	fmt.Fprintf(w, "Achieved RPS:  %.1f\n", s.ActualRPS)
	fmt.Fprintf(w, "Latency (ms):  min %.2f / mean %.2f / max %.2f\n", util.Round2(s.MinMs), util.Round2(s.MeanMs), util.Round2(s.MaxMs))
	fmt.Fprintf(w, "Percentiles:   p50 %.2f / p95 %.2f / p99 %.2f\n", util.Round2(s.P50Ms), util.Round2(s.P95Ms), util.Round2(s.P99Ms))
	if len(s.StatusCodes) > 0 {
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		fmt.Fprintln(w, "Status codes:")
		for _, code := range codes {
			fmt.Fprintf(w, "  %d: %d\n", code, s.StatusCodes[code])
		}
	}
	if len(s.ErrorKinds) > 0 {
		kinds := make([]string, 0, len(s.ErrorKinds))
		for kind := range s.ErrorKinds {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		fmt.Fprintln(w, "Errors:")
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", kind, s.ErrorKinds[kind])
		}
	}
}
