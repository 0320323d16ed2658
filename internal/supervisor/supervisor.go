// Package supervisor owns the worker pool: it spawns one worker process per
// configured slot, replaces any worker that dies unexpectedly, and forwards
// the termination signal on shutdown.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/nightglow-io/nightglow/internal/util"
)

type exitEvent struct {
	pid  int
	code int
}

type Supervisor struct {
	bin    string
	args   []string
	extra  []string
	count  int
	logger util.Logger

	mu    sync.Mutex
	procs map[int]*exec.Cmd

	spawned atomic.Uint64
}

// New prepares a supervisor that runs count copies of bin with the given
// arguments. extraEnv entries are appended to the inherited environment.
func New(bin string, args []string, extraEnv []string, count int, logger util.Logger) *Supervisor {
	return &Supervisor{
		bin:    bin,
		args:   args,
		extra:  extraEnv,
		count:  count,
		logger: logger,
		procs:  make(map[int]*exec.Cmd),
	}
}

// Run spawns the pool and supervises it until ctx is cancelled. Any worker
// exit before cancellation is treated as a crash and replaced 1:1,
// immediately and without backoff. On cancellation every live worker is sent
// SIGTERM and Run returns without waiting for them; each worker drains on its
// own.
func (s *Supervisor) Run(ctx context.Context) error {
	exits := make(chan exitEvent, s.count)

	for i := 0; i < s.count; i++ {
		if err := s.spawn(exits); err != nil {
			s.terminate()
			return fmt.Errorf("spawn initial pool: %w", err)
		}
	}
	s.logger.Info("worker pool started", "workers", s.count)

	for {
		select {
		case <-ctx.Done():
			s.terminate()
			return nil
		case ev := <-exits:
			s.mu.Lock()
			delete(s.procs, ev.pid)
			s.mu.Unlock()
			s.logger.Warn("worker exited unexpectedly", "pid", ev.pid, "code", ev.code)
			if err := s.spawn(exits); err != nil {
				s.logger.Error("worker respawn failed", "error", err)
			}
		}
	}
}

// Live reports the number of workers currently running.
func (s *Supervisor) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Spawned reports the total number of workers started, replacements included.
func (s *Supervisor) Spawned() uint64 {
	return s.spawned.Load()
}

func (s *Supervisor) spawn(exits chan<- exitEvent) error {
	cmd := exec.Command(s.bin, s.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), s.extra...)
	setProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	pid := cmd.Process.Pid

	s.mu.Lock()
	s.procs[pid] = cmd
	s.mu.Unlock()
	s.spawned.Add(1)
	s.logger.Info("worker started", "pid", pid)

	go func() {
		err := cmd.Wait()
		code := 0
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		} else if err != nil {
			code = -1
		}
		exits <- exitEvent{pid: pid, code: code}
	}()
	return nil
}

// terminate signals every live worker to drain. Fire-and-forget: the
// supervisor does not wait for acknowledgment.
func (s *Supervisor) terminate() {
	s.mu.Lock()
	procs := make([]*exec.Cmd, 0, len(s.procs))
	for _, cmd := range s.procs {
		procs = append(procs, cmd)
	}
	s.procs = make(map[int]*exec.Cmd)
	s.mu.Unlock()

	for _, cmd := range procs {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			s.logger.Debug("signal worker failed", "pid", cmd.Process.Pid, "error", err)
		}
	}
	s.logger.Info("termination forwarded", "workers", len(procs))
}
