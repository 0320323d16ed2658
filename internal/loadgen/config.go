// Package loadgen drives fixed-rate synthetic HTTP load at a target and
// validates the measured latency and failure profile against fixed readiness
// thresholds.
package loadgen

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultURL         = "http://127.0.0.1:3000/"
	DefaultDuration    = 60 * time.Second
	DefaultConcurrency = 100
	DefaultTargetRPS   = 1000

	// requestTimeout bounds every request; an expiry is recorded as a
	// timeout outcome, never a retry.
	requestTimeout = 30 * time.Second
)

type Config struct {
	URL         string
	Duration    time.Duration
	Concurrency int
	TargetRPS   int
	// HistoryPath, when set, is a sqlite file receiving one summary row per
	// run.
	HistoryPath string
	// Quiet suppresses the per-second progress line.
	Quiet bool
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.TargetRPS < 1 {
		return fmt.Errorf("rps must be at least 1, got %d", c.TargetRPS)
	}
	return nil
}

// PerWorkerDelay is the pause each request loop honors between iterations so
// the loops collectively approximate TargetRPS. This is an approximation, not
// a scheduler: slow responses and bursts make the achieved rate drift.
func (c Config) PerWorkerDelay() time.Duration {
	perWorkerRPS := float64(c.TargetRPS) / float64(c.Concurrency)
	return time.Duration(float64(time.Second) / perWorkerRPS)
}
