// Package server runs the HTTP listener and stops it, together with the
// components it depends on, when the process is asked to exit.
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
	"strconv"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases a component.
type ShutdownFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Server is an http.Server plus an ordered list of shutdown hooks.
type Server struct {
	http   *http.Server
	grace  time.Duration
	logger *slog.Logger
	mu     sync.Mutex
	hooks  []hook
}

// New configures a server on :port. Header reads share readTimeout and
// idle keep-alive connections are dropped after twice that.
func New(handler http.Handler, port int, readTimeout, writeTimeout, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              ":" + strconv.Itoa(port),
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       2 * readTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		grace:  shutdownTimeout,
		logger: logger,
	}
}

// OnShutdown registers fn to run after the listener has drained. Hooks run
// last-registered first, so a component opened early is closed late.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
	s.mu.Unlock()
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run binds the configured address and serves until ctx ends or the process
// receives SIGINT or SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen %s: %w", s.http.Addr, err), s.runHooks(context.Background()))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends. Hooks run on every exit path.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	failed := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	var serveErr error
	select {
	case err := <-failed:
		serveErr = fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("stopping", "cause", context.Cause(ctx).Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	var drainErr error
	if err := s.http.Shutdown(ctx); err != nil {
		drainErr = fmt.Errorf("drain connections: %w", err)
	}

	err := errors.Join(serveErr, drainErr, s.runHooks(ctx))
	if err != nil {
		s.logger.Error("stopped with errors", "error", err)
		return err
	}
	s.logger.Info("stopped")
	return nil
}

// runHooks runs and forgets every registered hook.
func (s *Server) runHooks(ctx context.Context) error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.fn(ctx); err != nil {
			s.logger.Error("component failed to stop", "name", h.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		s.logger.Info("component stopped", "name", h.name, "took", time.Since(start))
	}
	return errors.Join(errs...)
}
