// Package server runs an http.Handler until the process is told to stop.
//
// SHUTDOWN:
// Start blocks until one of:
//   - the listener fails (port in use)
//   - ctx is cancelled
//   - SIGINT or SIGTERM arrives
//
// On the last two it stops accepting connections, gives in-flight requests
// ShutdownTimeout to finish, then runs the OnShutdown hooks (closing the
// database, for instance).
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Config holds the listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig listens on addr with the usual timeouts.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:            addr,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server wraps http.Server with signal handling.
type Server struct {
	config     Config
	handler    http.Handler
	logger     *slog.Logger
	onShutdown []func() error
}

func New(cfg Config, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{config: cfg, handler: handler, logger: logger}
}

// OnShutdown registers fn to run after the listener has drained.
func (s *Server) OnShutdown(fn func() error) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener. Tests pass a listener on port 0.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.runShutdownHooks()

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("url", "http://"+displayAddr(ln.Addr())),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

func (s *Server) runShutdownHooks() {
	for _, fn := range s.onShutdown {
		if err := fn(); err != nil {
			s.logger.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}
}

func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return addr.String()
}
