// Package logger provides slog attribute helpers shared by the dispatch
// engine and its transports.
//
// Helpers return an empty slog.Attr for absent values (nil errors, empty ids,
// no parameters), which slog drops, so they can be passed unconditionally:
//
//	import "github.com/dmitrymomot/pathdispatch/core/logger"
//
//	log.Error("route handler failed",
//		logger.ResolveID(c.ID),
//		logger.Route(c.Route),
//		logger.Pattern("/users/{id}"),
//		logger.Params(c.Params),
//		logger.Error(err),
//	)
//
// Timing helpers:
//
//	start := time.Now()
//	// ...
//	log.Debug("route resolved", logger.Elapsed(start))
package logger
