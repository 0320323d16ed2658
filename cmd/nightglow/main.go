package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nightglow-io/nightglow/internal/config"
	"github.com/nightglow-io/nightglow/internal/page"
	"github.com/nightglow-io/nightglow/internal/payload"
	"github.com/nightglow-io/nightglow/internal/server"
	"github.com/nightglow-io/nightglow/internal/stats"
	"github.com/nightglow-io/nightglow/internal/supervisor"
	"github.com/nightglow-io/nightglow/internal/util"
	"github.com/nightglow-io/nightglow/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runCmd := flag.NewFlagSet("run", flag.ExitOnError)
			configPath := runCmd.String("config", "", "Path to config file (optional)")
			_ = runCmd.Parse(os.Args[2:])
			runSupervisor(*configPath)
			return
		case "worker":
			workerCmd := flag.NewFlagSet("worker", flag.ExitOnError)
			configPath := workerCmd.String("config", "", "Path to config file (optional)")
			_ = workerCmd.Parse(os.Args[2:])
			runWorker(*configPath)
			return
		case "check":
			checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
			configPath := checkCmd.String("config", "", "Path to config file (optional)")
			_ = checkCmd.Parse(os.Args[2:])
			checkConfig(*configPath)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		case "version", "-v", "--version":
			fmt.Println(version.Version)
			return
		}
	}

	configPath := flag.String("config", "", "Path to config file (optional)")
	flag.Parse()
	runSupervisor(*configPath)
}

func runSupervisor(configPath string) {
	logger := util.NewLogger()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	bin, err := os.Executable()
	if err != nil {
		logger.Error("cannot resolve own binary", "error", err)
		os.Exit(1)
	}
	args := []string{"worker"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}

	sup := supervisor.New(bin, args, nil, cfg.Workers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown requested")
		cancel()
	}()

	if err := sup.Run(ctx); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func runWorker(configPath string) {
	logger := util.NewLogger()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	pl, err := payload.Build(page.Document())
	if err != nil {
		logger.Error("payload build failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	srv := server.New(cfg.Server, pl, stats.New(), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func checkConfig(path string) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("config valid: port %d, %d workers\n", cfg.Server.Port, cfg.Workers)
	os.Exit(0)
}

func printHelp() {
	fmt.Print(`nightglow - themed demo page service

Usage:
  nightglow run [--config <path>]    Start the supervisor and worker pool
  nightglow worker [--config <path>] Run a single worker (used internally)
  nightglow check [--config <path>]  Validate config file
  nightglow help                     Show this help
  nightglow version                  Print version

Environment:
  PORT               Listen port (default 3000)
  NIGHTGLOW_WORKERS  Worker count (default: one per CPU)
`)
}
