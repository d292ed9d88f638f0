// Package server runs a dispatch router behind a single HTTP listener.
//
// The websocket binding is mounted at Config.WebsocketPath and the HTTP
// binding handles everything else, so the same route table answers both
// plain requests and websocket envelopes.
//
//	r := dispatch.New[struct{}]()
//	r.MustHandle("/rooms/{room}", roomHandler)
//
//	cfg, _ := server.LoadConfig()
//	srv, err := server.New(r, cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx))
//	return g.Wait()
//
// Configuration is read from SERVER_* environment variables (see Config).
package server
