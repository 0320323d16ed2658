package loadgen

import (
	"testing"
	"time"
)

func TestPercentileNearestRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	cases := []struct {
		p    float64
		want float64
	}{
		{50, 30},  // ceil(0.50*5)-1 = 2
		{95, 50},  // ceil(0.95*5)-1 = 4
		{99, 50},  // ceil(0.99*5)-1 = 4
		{100, 50}, // clamped to last
		{1, 10},   // ceil(0.01*5)-1 = 0
	}
	for _, tc := range cases {
		if got := percentile(sorted, tc.p); got != tc.want {
			t.Fatalf("percentile(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPercentileEdgeCases(t *testing.T) {
	if got := percentile(nil, 95); got != 0 {
		t.Fatalf("percentile of empty slice = %v, want 0", got)
	}
	if got := percentile([]float64{42}, 50); got != 42 {
		t.Fatalf("percentile of single sample = %v, want 42", got)
	}
}

func TestFinalize(t *testing.T) {
	m := NewMetrics()
	m.Record(10, 200, "")
	m.Record(30, 200, "")
	m.Record(20, 500, KindHTTPError)
	m.Record(50, 0, KindTimeout)
	m.Record(40, 200, "")

	cfg := Config{
		URL:         "http://127.0.0.1:3000/",
		Duration:    time.Second,
		Concurrency: 2,
		TargetRPS:   10,
	}
	s := m.Finalize(cfg)

	if s.Total != 5 || s.Success != 3 || s.Failed != 2 {
		t.Fatalf("counts = %d/%d/%d, want 5/3/2", s.Total, s.Success, s.Failed)
	}
	if s.Success+s.Failed != s.Total {
		t.Fatal("success + failed != total")
	}
	if s.MinMs != 10 || s.MaxMs != 50 {
		t.Fatalf("min/max = %v/%v, want 10/50", s.MinMs, s.MaxMs)
	}
	if s.MeanMs != 30 {
		t.Fatalf("mean = %v, want 30", s.MeanMs)
	}
	if s.P50Ms != 30 {
		t.Fatalf("p50 = %v, want 30", s.P50Ms)
	}
	if s.P95Ms != 50 {
		t.Fatalf("p95 = %v, want 50", s.P95Ms)
	}
	if s.SuccessRate != 60 {
		t.Fatalf("success rate = %v, want 60", s.SuccessRate)
	}
	if s.StatusCodes[200] != 3 || s.StatusCodes[500] != 1 {
		t.Fatalf("status codes = %v", s.StatusCodes)
	}
	if s.ErrorKinds[KindTimeout] != 1 || s.ErrorKinds[KindHTTPError] != 1 {
		t.Fatalf("error kinds = %v", s.ErrorKinds)
	}
}

func TestPerWorkerDelay(t *testing.T) {
	cfg := Config{TargetRPS: 1000, Concurrency: 100}
	// 1000 rps over 100 loops -> 10 rps per loop -> 100ms between requests.
	if got := cfg.PerWorkerDelay(); got != 100*time.Millisecond {
		t.Fatalf("delay = %v, want 100ms", got)
	}
	cfg = Config{TargetRPS: 50, Concurrency: 100}
	// Slower than one per loop-second: delay stretches past a second.
	if got := cfg.PerWorkerDelay(); got != 2*time.Second {
		t.Fatalf("delay = %v, want 2s", got)
	}
}
