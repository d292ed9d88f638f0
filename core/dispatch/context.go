package dispatch

import (
	"sync"
	"sync/atomic"
)

// Params maps parameter names to the values captured from the path.
type Params map[string]string

// Get returns the value of the named parameter, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Context is the state shared by every handler invoked during one Resolve
// call. Handlers receive the same pointer, so changes made by one handler
// are visible to the handlers that run after it. Handler bodies invoked for
// one context never overlap, including children of a group, so handlers may
// read and write Data without locking.
type Context[M any] struct {
	// ID identifies the Resolve call in logs.
	ID string
	// Route is the path exactly as given to Resolve.
	Route string
	// Path is Route without its query and fragment; this is what patterns
	// are matched against.
	Path string
	// Router is the router that created the context.
	Router *Router[M]
	// Data is the caller payload. Resolve never reads it.
	Data map[string]any
	// Params holds the parameters bound for the handler being invoked.
	// It is nil until an entry matches.
	Params Params
	// Mixins is the router's shared capability set.
	Mixins M

	matched int
	stopped atomic.Bool
	// held while a handler body runs
	running sync.Mutex
}

// Param returns the value of the named path parameter.
func (c *Context[M]) Param(name string) string {
	return c.Params.Get(name)
}

// Stop ends dispatch once the running handler (or group) completes: no
// further handlers or entries are evaluated and Resolve returns the context
// without an error. It is safe to call from concurrently running handlers.
func (c *Context[M]) Stop() {
	c.stopped.Store(true)
}

// Stopped reports whether a handler called Stop.
func (c *Context[M]) Stopped() bool {
	return c.stopped.Load()
}

// Matched returns the number of entries that matched the path so far.
func (c *Context[M]) Matched() int {
	return c.matched
}
