package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Config holds HTTP server configuration with environment variable support.
type Config struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxHeaderBytes  int           `env:"SERVER_MAX_HEADER_BYTES" envDefault:"1048576"`
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	cfg    Config
	log    *slog.Logger
	server *http.Server
}

// New creates a Server from configuration.
func New(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{cfg: cfg, log: log.With("component", "server")}
}

// Run returns an errgroup-compatible function that serves handler until the
// context is canceled, then shuts down gracefully within the configured
// timeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) func() error {
	return func() error {
		s.server = &http.Server{
			Addr:           s.cfg.Addr,
			Handler:        handler,
			ReadTimeout:    s.cfg.ReadTimeout,
			WriteTimeout:   s.cfg.WriteTimeout,
			IdleTimeout:    s.cfg.IdleTimeout,
			MaxHeaderBytes: s.cfg.MaxHeaderBytes,
		}

		errCh := make(chan error, 1)
		go func() {
			s.log.InfoContext(ctx, "starting server", "addr", s.cfg.Addr)
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
			defer cancel()

			s.log.Info("shutting down server gracefully", "timeout", s.cfg.ShutdownTimeout)
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				s.log.Error("server shutdown error", "error", err)
				return err
			}
			s.log.Info("server shutdown complete")
			return nil
		}
	}
}
