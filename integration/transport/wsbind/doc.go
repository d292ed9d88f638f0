// Package wsbind dispatches websocket messages with a dispatch.Router.
//
// Each text message is a JSON envelope naming the route to resolve and an
// optional data object:
//
//	{"id": 7, "route": "/rooms/42/messages", "data": {"text": "hi"}}
//
// The data object becomes Context.Data (plus the upgrade request under
// DataRequest). A handler places its answer under DataReply:
//
//	r.MustHandle("/rooms/{room}/messages", dispatch.Func[struct{}](func(ctx context.Context, c *dispatch.Context[struct{}]) error {
//		c.Data[wsbind.DataReply] = map[string]any{"room": c.Param("room"), "echo": c.Data["text"]}
//		return nil
//	}))
//
//	http.Handle("/ws", wsbind.Handler(r, wsbind.WithAllowAnyOrigin()))
//
// Every message gets exactly one reply carrying the same id:
//
//	{"id": 7, "ok": true, "matched": 1, "stopped": false, "params": {"room": "42"}, "reply": {...}}
//	{"id": 7, "ok": false, "error": "..."}
//
// Malformed envelopes and handler errors are reported in the reply; the
// connection stays open.
package wsbind
