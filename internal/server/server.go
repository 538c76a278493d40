package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default timeout for writing responses.
	DefaultWriteTimeout = 30 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// MaxRequestBodyBytes limits the size of a sync request body.
	MaxRequestBodyBytes = 10 << 20
)

// Syncer evaluates a sync request. *reconciler.Engine implements it.
type Syncer interface {
	Sync(parent *api.ParentResource, children api.ObservedChildren) (*api.SyncResult, error)
}

// Checker reports whether the manifest folder can currently be served.
// manifest.Source implements it.
type Checker interface {
	Validate() error
}

// Options configures the HTTP server.
type Options struct {
	// Address is the host:port to listen on.
	Address string

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration

	// OnListening is called once the listener is open.
	OnListening func(addr net.Addr)
}

func (o Options) withDefaults() Options {
	if o.ReadHeaderTimeout == 0 {
		o.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	return o
}

// Server exposes the sync hook over HTTP together with health, readiness and
// metrics endpoints.
type Server struct {
	options Options
	syncer  Syncer
	checker Checker
}

// New creates a Server.
func New(opts Options, syncer Syncer, checker Checker) *Server {
	return &Server{
		options: opts.withDefaults(),
		syncer:  syncer,
		checker: checker,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.options.Address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.options.ReadHeaderTimeout,
		WriteTimeout:      s.options.WriteTimeout,
		IdleTimeout:       s.options.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	logging.Info("Server", "Listening on %s", listener.Addr())
	if s.options.OnListening != nil {
		s.options.OnListening(listener.Addr())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("Server", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
