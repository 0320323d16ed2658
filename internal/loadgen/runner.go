package loadgen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nightglow-io/nightglow/internal/util"
)

type Runner struct {
	cfg    Config
	client *http.Client
	out    io.Writer
	logger util.Logger
}

func NewRunner(cfg Config, out io.Writer, logger util.Logger) *Runner {
	return &Runner{
		cfg: cfg,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		out:    out,
		logger: logger,
	}
}

// Run drives the configured load until the wall-clock duration elapses, then
// finalizes and returns the summary. Per-request failures are recorded, never
// returned; only a configuration problem yields an error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.cfg.Validate(); err != nil {
		return Summary{}, err
	}

	metrics := NewMetrics()
	delay := r.cfg.PerWorkerDelay()
	deadline := time.Now().Add(r.cfg.Duration)

	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	r.logger.Info("load test starting",
		"url", r.cfg.URL,
		"duration", r.cfg.Duration,
		"concurrency", r.cfg.Concurrency,
		"target_rps", r.cfg.TargetRPS,
		"per_worker_delay", delay)

	reporterDone := make(chan struct{})
	go r.reportProgress(runCtx, metrics, reporterDone)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.workerLoop(runCtx, metrics, deadline, delay)
		}()
	}
	wg.Wait()
	cancel()
	<-reporterDone

	return metrics.Finalize(r.cfg), nil
}

// workerLoop issues one request, records its outcome, sleeps the per-worker
// delay, and repeats until the run deadline passes.
func (r *Runner) workerLoop(ctx context.Context, metrics *Metrics, deadline time.Time, delay time.Duration) {
	for time.Now().Before(deadline) {
		latencyMs, status, err := r.doRequest(ctx)
		if err != nil && ctx.Err() != nil && time.Now().After(deadline) {
			// The deadline expired mid-flight; the aborted request is not an
			// observation of the target.
			return
		}
		metrics.Record(latencyMs, status, classify(status, err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (r *Runner) doRequest(ctx context.Context) (float64, int, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := r.client.Do(req)
	latencyMs := float64(time.Since(start).Nanoseconds()) / 1e6
	if err != nil {
		return latencyMs, 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return latencyMs, resp.StatusCode, nil
}

// reportProgress prints one running line per second until the run ends.
func (r *Runner) reportProgress(ctx context.Context, metrics *Metrics, done chan<- struct{}) {
	defer close(done)
	if r.cfg.Quiet {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p := metrics.progress()
			elapsed := p.elapsed.Seconds()
			rps := 0.0
			if elapsed > 0 {
				rps = float64(p.total) / elapsed
			}
			fmt.Fprintf(r.out, "[%3.0fs] requests=%d rps=%.1f success=%.2f%%\n",
				elapsed, p.total, rps, p.successRate)
		}
	}
}
