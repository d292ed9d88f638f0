package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrymomot/pathdispatch/core/dispatch"
	"github.com/dmitrymomot/pathdispatch/core/logger"
	"github.com/dmitrymomot/pathdispatch/integration/transport/httpbind"
	"github.com/dmitrymomot/pathdispatch/integration/transport/wsbind"
)

// Server exposes a dispatch router over HTTP and websockets with graceful
// shutdown. Safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	cfg     Config
	handler http.Handler
	logger  *slog.Logger
	server  *http.Server
	addr    net.Addr
	running bool
}

// New builds a server for router. The websocket binding is mounted at
// cfg.WebsocketPath and the HTTP binding serves every other path.
func New[M any](router *dispatch.Router[M], cfg Config, opts ...Option) (*Server, error) {
	if router == nil {
		return nil, ErrNilRouter
	}
	if cfg.Addr == "" {
		return nil, ErrMissingAddress
	}

	s := &settings{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	httpOpts := append([]httpbind.Option{httpbind.WithLogger(s.logger)}, s.httpOpts...)
	wsOpts := append([]wsbind.Option{wsbind.WithLogger(s.logger)}, s.wsOpts...)

	mux := http.NewServeMux()
	mux.Handle("/", httpbind.Handler(router, httpOpts...))
	if cfg.WebsocketPath != "" {
		mux.Handle(cfg.WebsocketPath, wsbind.Handler(router, wsOpts...))
	}

	return &Server{
		cfg:     cfg,
		handler: mux,
		logger:  s.logger.With(logger.Component("server")),
	}, nil
}

// Handler returns the composed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listener address once the server has started, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start listens on the configured address and blocks until the context is
// canceled or serving fails. Returns ctx.Err() when the context is canceled.
// Use Stop for graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.running = true
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts down the server using the configured timeout.
// Returns immediately if the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	s.logger.Info("shutting down server gracefully", logger.Duration(timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.running = false
	if err != nil {
		s.logger.Error("server shutdown error", logger.Error(err))
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Run returns an errgroup-compatible function that serves until ctx is
// canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.logger.Error("failed to stop server during context cancellation", logger.Error(err))
			}
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
