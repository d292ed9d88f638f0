package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pathdispatch/core/logger"
	"github.com/dmitrymomot/pathdispatch/core/pathpattern"
)

// Resolve dispatches path to every matching route in registration order and
// returns the context shared by the invoked handlers.
//
// Query and fragment are stripped before matching. The handlers of one route
// complete before the next route is evaluated. The first handler error
// aborts the call and is returned as a *HandlerError. A handler calling
// Context.Stop ends dispatch early; Resolve then returns the context and a
// nil error. A path nothing matches yields a context with no params.
//
// data is exposed to handlers as Context.Data; nil is replaced with an empty
// map. ctx is passed to the handlers as is.
func (r *Router[M]) Resolve(ctx context.Context, path string, data map[string]any) (*Context[M], error) {
	if !utf8.ValidString(path) {
		return nil, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidInput, path)
	}

	route, _, _ := strings.Cut(path, "?")
	route, _, _ = strings.Cut(route, "#")

	if data == nil {
		data = make(map[string]any)
	}

	c := &Context[M]{
		ID:     uuid.NewString(),
		Route:  path,
		Path:   route,
		Router: r,
		Data:   data,
		Mixins: r.mixins,
	}

	// Entries appended while resolving are not visited by this call.
	r.mu.RLock()
	entries := r.entries
	r.mu.RUnlock()

	start := time.Now()
	for _, e := range entries {
		values, ok := e.matcher.Match(route)
		if !ok {
			continue
		}
		c.matched++

		r.logger.DebugContext(ctx, "route matched",
			logger.ResolveID(c.ID),
			logger.Route(path),
			logger.Pattern(e.pattern),
		)

		for _, d := range e.handlers {
			if err := r.resolveHandler(ctx, e, values, d, c, nil); err != nil {
				r.logger.ErrorContext(ctx, "route handler failed",
					logger.ResolveID(c.ID),
					logger.Route(path),
					logger.Pattern(e.pattern),
					logger.Error(err),
					logger.Elapsed(start),
				)
				return nil, err
			}

			if c.Stopped() {
				r.logger.DebugContext(ctx, "routing stopped",
					logger.ResolveID(c.ID),
					logger.Route(path),
					logger.Pattern(e.pattern),
				)
				return c, nil
			}
		}
	}

	r.logger.DebugContext(ctx, "route resolved",
		logger.ResolveID(c.ID),
		logger.Route(path),
		logger.Count("matched", c.matched),
		logger.Elapsed(start),
	)

	return c, nil
}

// resolveHandler runs one descriptor against a match. When inherited is nil
// the parameters are built from the captured values and assigned to
// c.Params; nested actions get the parent's map passed down instead.
// Group children are started on their own goroutines but invoke serializes
// their bodies on the context; all of them are awaited and the first error
// is returned.
func (r *Router[M]) resolveHandler(ctx context.Context, e *entry[M], values []string, d descriptor[M], c *Context[M], inherited Params) error {
	params := inherited
	if params == nil {
		params = buildParams(values, d.params)
		c.Params = params
	}

	switch a := d.action.(type) {
	case Single[M]:
		if a.Fn == nil {
			return fmt.Errorf("%w: nil handler function for '%s'", ErrMalformedHandler, e.pattern)
		}
		return r.invoke(ctx, e, a.Fn, c)
	case Group[M]:
		var g errgroup.Group
		for _, child := range a.Children {
			g.Go(func() error {
				return r.resolveHandler(ctx, e, values, descriptor[M]{action: child}, c, params)
			})
		}
		return g.Wait()
	default:
		return fmt.Errorf("%w: unexpected action %T for '%s'", ErrMalformedHandler, d.action, e.pattern)
	}
}

// invoke calls a handler, converting a panic into an error. At most one
// handler body runs per context at a time.
func (r *Router[M]) invoke(ctx context.Context, e *entry[M], fn HandlerFunc[M], c *Context[M]) (err error) {
	c.running.Lock()
	defer c.running.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = &HandlerError{
				Pattern: e.pattern,
				Route:   c.Route,
				Err:     &PanicError{value: p, stack: debug.Stack()},
			}
		}
	}()

	if err := fn(ctx, c); err != nil {
		return &HandlerError{Pattern: e.pattern, Route: c.Route, Err: err}
	}
	return nil
}

// buildParams zips captured values with parameter names in declared order.
func buildParams(values []string, params []pathpattern.Param) Params {
	p := make(Params, len(params))
	for _, param := range params {
		if param.Index < len(values) {
			p[param.Name] = values[param.Index]
		}
	}
	return p
}
