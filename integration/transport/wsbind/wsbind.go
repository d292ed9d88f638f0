package wsbind

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dmitrymomot/pathdispatch/core/dispatch"
	"github.com/dmitrymomot/pathdispatch/core/logger"
)

// Keys used in Context.Data.
const (
	// DataRequest holds the *http.Request that opened the connection.
	DataRequest = "request"
	// DataReply is read after dispatch and sent back as the "reply" field.
	DataReply = "reply"
)

// Option configures the websocket handler.
type Option func(*config)

type config struct {
	upgrader       *websocket.Upgrader
	responseHeader http.Header
	logger         *slog.Logger
}

// WithReadBuffer sets the upgrader read buffer size in bytes.
func WithReadBuffer(size int) Option {
	return func(c *config) {
		c.upgrader.ReadBufferSize = size
	}
}

// WithWriteBuffer sets the upgrader write buffer size in bytes.
func WithWriteBuffer(size int) Option {
	return func(c *config) {
		c.upgrader.WriteBufferSize = size
	}
}

// WithHandshakeTimeout limits how long the upgrade handshake may take.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

// WithOriginCheck sets the function deciding whether a request origin is accepted.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *config) {
		c.upgrader.CheckOrigin = fn
	}
}

// WithAllowAnyOrigin accepts upgrades from every origin.
func WithAllowAnyOrigin() Option {
	return func(c *config) {
		c.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

// WithUpgradeHeaders adds headers to the upgrade response.
func WithUpgradeHeaders(header http.Header) Option {
	return func(c *config) {
		c.responseHeader = header
	}
}

// WithLogger sets a custom logger for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Handler upgrades the request to a websocket connection and resolves every
// text message with router. Messages are processed one at a time, in the
// order they arrive, and each gets exactly one reply.
func Handler[M any](router *dispatch.Router[M], opts ...Option) http.Handler {
	cfg := &config{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := cfg.upgrader.Upgrade(w, r, cfg.responseHeader)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			cfg.logger.WarnContext(r.Context(), "websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.Close() }()

		serve(r.Context(), router, conn, r, cfg.logger)
	})
}

func serve[M any](ctx context.Context, router *dispatch.Router[M], conn *websocket.Conn, r *http.Request, log *slog.Logger) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "websocket read failed", logger.Error(err))
			}
			return
		}

		var reply []byte
		if msgType != websocket.TextMessage {
			reply = errorReply("", ErrUnsupportedMessage)
		} else {
			reply = handleMessage(ctx, router, r, msg, log)
		}

		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			log.WarnContext(ctx, "websocket write failed", logger.Error(err))
			return
		}
	}
}

// handleMessage decodes one envelope, resolves it and encodes the reply.
//
// Request:  {"id": any, "route": "/path", "data": {...}}
// Reply:    {"id": any, "ok": true, "matched": n, "stopped": bool, "params": {...}, "reply": any}
// Failure:  {"id": any, "ok": false, "error": "..."}
func handleMessage[M any](ctx context.Context, router *dispatch.Router[M], r *http.Request, msg []byte, log *slog.Logger) []byte {
	if !gjson.ValidBytes(msg) {
		return errorReply("", ErrMalformedEnvelope)
	}

	env := gjson.ParseBytes(msg)
	if !env.IsObject() {
		return errorReply("", ErrMalformedEnvelope)
	}

	id := env.Get("id").Raw

	route := env.Get("route")
	if route.Type != gjson.String {
		return errorReply(id, ErrMissingRoute)
	}

	data := make(map[string]any)
	if d := env.Get("data"); d.Exists() {
		if !d.IsObject() {
			return errorReply(id, ErrMalformedData)
		}
		if m, ok := d.Value().(map[string]any); ok {
			data = m
		}
	}
	// Replies come from handlers only.
	delete(data, DataReply)
	data[DataRequest] = r

	c, err := router.Resolve(ctx, route.String(), data)
	if err != nil {
		log.ErrorContext(ctx, "websocket dispatch failed",
			logger.Route(route.String()),
			logger.Error(err),
		)
		return errorReply(id, err)
	}

	out, err := encodeReply(id, c.Matched(), c.Stopped(), c.Params, c.Data[DataReply])
	if err != nil {
		log.ErrorContext(ctx, "websocket reply encoding failed",
			logger.ResolveID(c.ID),
			logger.Route(c.Route),
			logger.Error(err),
		)
		return errorReply(id, ErrEncodeReply)
	}
	return out
}

func encodeReply(id string, matched int, stopped bool, params map[string]string, reply any) ([]byte, error) {
	out := []byte(`{}`)
	var err error

	if id != "" {
		if out, err = sjson.SetRawBytes(out, "id", []byte(id)); err != nil {
			return nil, err
		}
	}
	if out, err = sjson.SetBytes(out, "ok", true); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "matched", matched); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "stopped", stopped); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]string{}
	}
	if out, err = sjson.SetBytes(out, "params", params); err != nil {
		return nil, err
	}
	if reply != nil {
		if out, err = sjson.SetBytes(out, "reply", reply); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func errorReply(id string, cause error) []byte {
	out := []byte(`{"ok":false}`)
	if id != "" {
		out, _ = sjson.SetRawBytes(out, "id", []byte(id))
	}
	out, _ = sjson.SetBytes(out, "error", cause.Error())
	return out
}
