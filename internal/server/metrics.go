// Package server runs the optional metrics HTTP endpoint for the duration of
// a sweep.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for open scrapes.
const DefaultShutdownTimeout = 5 * time.Second

// MetricsServer serves /metrics and /health on its own listener.
type MetricsServer struct {
	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	errCh    chan error
}

// NewMetricsServer creates a server that exposes metrics at /metrics.
func NewMetricsServer(metrics http.Handler) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &MetricsServer{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens on addr and serves in the background.
func (s *MetricsServer) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("metrics server already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.errCh = make(chan error, 1)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
			s.errCh <- err
		}
		close(s.errCh)
	}()

	return nil
}

// Addr returns the bound listen address, or "" if not started.
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting scrapes and waits for in-flight ones to finish.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	errCh := s.errCh
	s.mu.Unlock()

	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return <-errCh
}
