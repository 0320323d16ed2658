package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nightglow-io/nightglow/internal/loadgen"
	"github.com/nightglow-io/nightglow/internal/util"
)

func main() {
	url := flag.String("url", loadgen.DefaultURL, "Target URL")
	duration := flag.Int("duration", int(loadgen.DefaultDuration.Seconds()), "Test duration in seconds")
	concurrency := flag.Int("concurrency", loadgen.DefaultConcurrency, "Number of parallel request loops")
	rps := flag.Int("rps", loadgen.DefaultTargetRPS, "Target aggregate requests per second")
	history := flag.String("history", "", "Optional sqlite file recording run summaries")
	quiet := flag.Bool("quiet", false, "Suppress the per-second progress line")
	flag.Parse()

	logger := util.NewLogger()

	cfg := loadgen.Config{
		URL:         *url,
		Duration:    time.Duration(*duration) * time.Second,
		Concurrency: *concurrency,
		TargetRPS:   *rps,
		HistoryPath: *history,
		Quiet:       *quiet,
	}

	runner := loadgen.NewRunner(cfg, os.Stdout, logger)
	summary, err := runner.Run(context.Background())
	if err != nil {
		logger.Error("load test failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	summary.Print(os.Stdout)
	checks := loadgen.Evaluate(summary)
	fmt.Println()
	loadgen.PrintChecks(os.Stdout, checks)
	passed := loadgen.AllPassed(checks)

	if cfg.HistoryPath != "" {
		if err := saveHistory(cfg.HistoryPath, summary, passed); err != nil {
			logger.Error("history persist failed", "error", err)
		}
	}

	if !passed {
		os.Exit(1)
	}
}

func saveHistory(path string, summary loadgen.Summary, passed bool) error {
	h, err := loadgen.OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()
	return h.Save(summary, passed)
}
