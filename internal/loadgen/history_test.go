package loadgen

import (
	"path/filepath"
	"testing"
	"time"
)

func TestHistorySaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	h, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}

	s := Summary{
		Target:      "http://127.0.0.1:3000/",
		Duration:    time.Minute,
		Concurrency: 100,
		TargetRPS:   1000,
		Total:       60000,
		Success:     59990,
		Failed:      10,
		SuccessRate: 99.98,
		ActualRPS:   1000.2,
		MinMs:       1.1,
		MeanMs:      8.4,
		MaxMs:       210.5,
		P50Ms:       6.2,
		P95Ms:       24.8,
		P99Ms:       61.3,
	}
	if err := h.Save(s, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Schema init must be idempotent and the row must survive reopen.
	h, err = OpenHistory(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h.Close()

	var count int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM runs WHERE passed = 1").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	var target string
	var rps float64
	if err := h.db.QueryRow("SELECT target, actual_rps FROM runs").Scan(&target, &rps); err != nil {
		t.Fatalf("read row: %v", err)
	}
	if target != s.Target {
		t.Fatalf("target = %q, want %q", target, s.Target)
	}
	if rps != s.ActualRPS {
		t.Fatalf("actual_rps = %v, want %v", rps, s.ActualRPS)
	}
}
