//go:build linux || darwin

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestInitialPoolSize(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sup := New("sleep", []string{"30"}, nil, 3, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sup.Run(ctx)
	}()

	if !waitFor(t, 2*time.Second, func() bool { return sup.Live() == 3 }) {
		t.Fatalf("live = %d, want 3", sup.Live())
	}
	if got := sup.Spawned(); got != 3 {
		t.Fatalf("spawned = %d, want 3", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not return after cancel")
	}
}

func TestCrashedWorkerIsReplaced(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Workers live briefly then exit non-zero, simulating a crash.
	sup := New("sh", []string{"-c", "sleep 0.2; exit 1"}, nil, 2, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sup.Run(ctx) }()

	if !waitFor(t, 2*time.Second, func() bool { return sup.Spawned() >= 2 }) {
		t.Fatalf("initial pool never reached 2, spawned = %d", sup.Spawned())
	}
	// After the first generation crashes, replacements must bring the live
	// count back to the pool size.
	if !waitFor(t, 3*time.Second, func() bool { return sup.Spawned() > 2 }) {
		t.Fatalf("no replacement spawned, spawned = %d", sup.Spawned())
	}
	if !waitFor(t, 3*time.Second, func() bool { return sup.Live() == 2 }) {
		t.Fatalf("live = %d, want 2 after replacement", sup.Live())
	}
}

func TestInitialSpawnFailureAborts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sup := New("/nonexistent/worker-binary", nil, nil, 2, logger)

	err := sup.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when the initial pool cannot be spawned")
	}
}
