package httpbind

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pathdispatch/core/dispatch"
	"github.com/dmitrymomot/pathdispatch/core/logger"
)

// Keys under which the request is exposed in Context.Data.
const (
	DataRequest = "request"
	DataWriter  = "writer"
	DataMethod  = "method"
)

// ErrorHandler writes the response for a failed Resolve call.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the HTTP handler.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	errorHandler ErrorHandler
	notFound     http.Handler
}

// WithLogger sets a custom logger for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithNotFound sets the handler used when no route matched.
func WithNotFound(h http.Handler) Option {
	return func(c *config) {
		if h != nil {
			c.notFound = h
		}
	}
}

// Handler serves HTTP requests by resolving the request URI with router.
//
// The request, the response writer and the method are placed in
// Context.Data. When nothing matched the not-found handler runs (404 by
// default). When a handler fails the error handler runs unless a response
// was already written. A matched request whose handlers wrote nothing gets
// 204 No Content.
func Handler[M any](router *dispatch.Router[M], opts ...Option) http.Handler {
	cfg := &config{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		errorHandler: defaultErrorHandler,
		notFound:     http.NotFoundHandler(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)

		c, err := router.Resolve(r.Context(), r.URL.RequestURI(), map[string]any{
			DataRequest: r,
			DataWriter:  http.ResponseWriter(ww),
			DataMethod:  r.Method,
		})
		if err != nil {
			cfg.logger.ErrorContext(r.Context(), "http dispatch failed",
				logger.Method(r.Method),
				logger.Route(r.URL.RequestURI()),
				logger.Error(err),
			)
			if !ww.Written() {
				cfg.errorHandler(ww, r, err)
			}
			return
		}

		if c.Matched() == 0 {
			cfg.notFound.ServeHTTP(ww, r)
			return
		}

		if !ww.Written() {
			ww.WriteHeader(http.StatusNoContent)
		}
	})
}

// Request returns the request stored in the context by Handler.
func Request[M any](c *dispatch.Context[M]) *http.Request {
	r, _ := c.Data[DataRequest].(*http.Request)
	return r
}

// ResponseWriter returns the response writer stored in the context by Handler.
func ResponseWriter[M any](c *dispatch.Context[M]) http.ResponseWriter {
	w, _ := c.Data[DataWriter].(http.ResponseWriter)
	return w
}

// defaultErrorHandler maps invalid input to 400 and everything else to 500.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dispatch.ErrInvalidInput) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
