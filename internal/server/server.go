// Package server implements the per-worker HTTP surface: the payload route,
// the health and metrics endpoints, and the live status stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nightglow-io/nightglow/internal/config"
	"github.com/nightglow-io/nightglow/internal/payload"
	"github.com/nightglow-io/nightglow/internal/stats"
	"github.com/nightglow-io/nightglow/internal/util"
)

type Server struct {
	cfg     config.ServerConfig
	payload *payload.Payload
	stats   *stats.Stats
	logger  util.Logger
	server  *http.Server
}

func New(cfg config.ServerConfig, pl *payload.Payload, st *stats.Stats, logger util.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		payload: pl,
		stats:   st,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics", st.Handler)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/", s.handlePayload)

	s.server = &http.Server{
		Addr:    util.NetJoin(cfg.BindAddr, cfg.Port),
		Handler: mux,
		// Keep-alive must outlive intermediary idle timeouts; the header
		// timeout sits just above so the idle reaper always fires first.
		IdleTimeout:       cfg.IdleTimeout.Duration(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration(),
	}
	return s
}

// Run binds the listener, serves until ctx is cancelled, then drains in-flight
// requests before returning. A bind failure is returned immediately and is
// fatal to the worker.
func (s *Server) Run(ctx context.Context) error {
	ln, err := listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("worker listening", "addr", s.server.Addr, "worker", s.stats.WorkerID())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace.Duration())
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("drain incomplete", "error", err)
			return err
		}
		s.logger.Info("worker drained", "worker", s.stats.WorkerID())
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	if err := json.NewEncoder(w).Encode(s.stats.Snapshot()); err != nil {
		s.logger.Error("health write failed", "error", err)
	}
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body := s.payload.Raw()
	acceptsGzip := strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
	if acceptsGzip {
		body = s.payload.Gzip()
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "public, max-age=300, stale-while-revalidate=60")
	h.Set("ETag", s.payload.ETag())
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	if acceptsGzip {
		h.Set("Content-Encoding", "gzip")
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	if _, err := w.Write(body); err != nil {
		s.stats.RecordError()
		s.logger.Debug("payload write failed", "error", err, "remote", r.RemoteAddr)
	}

	s.stats.RecordRequest(float64(time.Since(start).Nanoseconds()) / 1e6)
}

// listen opens the TCP listener with SO_REUSEPORT set so every worker in the
// pool can bind the same port and let the kernel spread accepted connections.
func listen(ctx context.Context, network, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reusePort}
	return lc.Listen(ctx, network, addr)
}
