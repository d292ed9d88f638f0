package server

import (
	"log/slog"

	"github.com/dmitrymomot/pathdispatch/integration/transport/httpbind"
	"github.com/dmitrymomot/pathdispatch/integration/transport/wsbind"
)

// Option configures server behavior.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	httpOpts []httpbind.Option
	wsOpts   []wsbind.Option
}

// WithLogger sets the logger for the server and both transport bindings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTTPOptions passes options through to the HTTP binding.
func WithHTTPOptions(opts ...httpbind.Option) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, opts...)
	}
}

// WithWebsocketOptions passes options through to the websocket binding.
func WithWebsocketOptions(opts ...wsbind.Option) Option {
	return func(s *settings) {
		s.wsOpts = append(s.wsOpts, opts...)
	}
}
