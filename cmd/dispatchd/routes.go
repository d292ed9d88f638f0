package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/pathdispatch/core/dispatch"
	"github.com/dmitrymomot/pathdispatch/core/logger"
	"github.com/dmitrymomot/pathdispatch/integration/transport/httpbind"
	"github.com/dmitrymomot/pathdispatch/integration/transport/wsbind"
)

type appContext = dispatch.Context[*App]

var errForbidden = errors.New("forbidden")

func registerRoutes(r *dispatch.Router[*App]) error {
	// Runs first for every path.
	if err := r.HandleAll(dispatch.Func[*App](countRequest)); err != nil {
		return err
	}
	if err := r.Handle("/admin/*", dispatch.Func[*App](denyAdmin)); err != nil {
		return err
	}
	if err := r.Handle("/healthz", dispatch.Func[*App](health)); err != nil {
		return err
	}
	return r.Handle("/rooms/{room}/messages",
		dispatch.Each[*App](
			dispatch.Func[*App](validateRoom),
			dispatch.Func[*App](stampMessage),
		),
		dispatch.Func[*App](deliverMessage),
	)
}

func countRequest(ctx context.Context, c *appContext) error {
	n := c.Mixins.Count()
	c.Mixins.Log.DebugContext(ctx, "request counted",
		logger.ResolveID(c.ID),
		logger.Route(c.Route),
		logger.Key("total", n),
	)
	return nil
}

func denyAdmin(_ context.Context, c *appContext) error {
	if w := httpbind.ResponseWriter(c); w != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		c.Stop()
		return nil
	}
	return errForbidden
}

func health(_ context.Context, c *appContext) error {
	return reply(c, map[string]any{
		"app":    c.Mixins.Name,
		"uptime": time.Since(c.Mixins.Started).Round(time.Second).String(),
	})
}

func validateRoom(_ context.Context, c *appContext) error {
	if strings.TrimSpace(c.Param("room")) == "" {
		return errors.New("room is required")
	}
	return nil
}

// stampMessage is grouped with validateRoom and records when the message arrived.
func stampMessage(_ context.Context, c *appContext) error {
	c.Data["received_at"] = time.Now().UTC()
	c.Mixins.Log.Debug("message received",
		logger.ResolveID(c.ID),
		logger.Params(c.Params),
	)
	return nil
}

func deliverMessage(_ context.Context, c *appContext) error {
	text, _ := c.Data["text"].(string)
	if req := httpbind.Request(c); req != nil && text == "" {
		text = req.URL.Query().Get("text")
	}
	out := map[string]any{
		"room": c.Param("room"),
		"text": text,
	}
	if at, ok := c.Data["received_at"].(time.Time); ok {
		out["received_at"] = at.Format(time.RFC3339)
	}
	return reply(c, out)
}

// reply writes v as JSON over HTTP or stores it as the websocket reply.
func reply(c *appContext, v any) error {
	w := httpbind.ResponseWriter(c)
	if w == nil {
		c.Data[wsbind.DataReply] = v
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
