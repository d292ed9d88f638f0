package dispatch

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/dmitrymomot/pathdispatch/core/logger"
	"github.com/dmitrymomot/pathdispatch/core/pathpattern"
)

// Router holds an ordered table of routes and dispatches paths to them.
// M is the type of the capability set shared with handlers through
// Context.Mixins; use struct{} when none is needed.
//
// Routes are evaluated in registration order and every matching route runs,
// not only the first one.
type Router[M any] struct {
	mu      sync.RWMutex
	entries []*entry[M]

	strict        bool
	caseSensitive bool
	instanceKey   string
	mixins        M
	compiler      pathpattern.Compiler
	logger        *slog.Logger
}

// entry is one registration: a matcher and the handlers bound to it.
type entry[M any] struct {
	pattern  string
	matcher  pathpattern.Matcher
	handlers []descriptor[M]
}

// descriptor pairs an action with the parameters its pattern captures.
type descriptor[M any] struct {
	action Action[M]
	params []pathpattern.Param
}

// Route describes a registered entry.
type Route struct {
	Pattern  string
	Handlers int
}

// New creates a router. It never consults the instance registry; see
// GetOrCreate for shared instances. New panics with ErrMixinType when
// WithMixins carries a value of a type other than M.
func New[M any](opts ...Option) *Router[M] {
	r, err := build[M](newSettings(opts...))
	if err != nil {
		panic(err)
	}
	return r
}

func build[M any](s settings) (*Router[M], error) {
	r := &Router[M]{
		strict:        s.strict,
		caseSensitive: s.caseSensitive,
		instanceKey:   s.instanceKey,
		compiler:      s.compiler,
		logger:        s.logger,
	}

	if s.mixins != nil {
		m, ok := s.mixins.(M)
		if !ok {
			var zero M
			return nil, fmt.Errorf("%w: got %T, want %T", ErrMixinType, s.mixins, zero)
		}
		r.mixins = m
	}

	return r, nil
}

// Handle registers actions for a path template such as "/users/{id}".
func (r *Router[M]) Handle(pattern string, actions ...Action[M]) error {
	return r.register(pattern, pattern, actions)
}

// HandleRegexp registers actions for a raw regular expression. Capture
// groups become parameters.
func (r *Router[M]) HandleRegexp(re *regexp.Regexp, actions ...Action[M]) error {
	display := "<nil>"
	if re != nil {
		display = re.String()
	}
	return r.register(re, display, actions)
}

// HandleMatcher registers actions for a custom matcher.
func (r *Router[M]) HandleMatcher(m pathpattern.Matcher, actions ...Action[M]) error {
	var pattern any
	if m != nil {
		pattern = m
	}
	return r.register(pattern, fmt.Sprintf("%v", m), actions)
}

// HandleAll registers actions that run for every path.
func (r *Router[M]) HandleAll(actions ...Action[M]) error {
	return r.register(pathpattern.MatchAll(), "*", actions)
}

// MustHandle is like Handle but panics on error.
func (r *Router[M]) MustHandle(pattern string, actions ...Action[M]) {
	if err := r.Handle(pattern, actions...); err != nil {
		panic(err)
	}
}

// MustHandleAll is like HandleAll but panics on error.
func (r *Router[M]) MustHandleAll(actions ...Action[M]) {
	if err := r.HandleAll(actions...); err != nil {
		panic(err)
	}
}

// Routes returns the registered entries in evaluation order.
func (r *Router[M]) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.entries))
	for _, e := range r.entries {
		routes = append(routes, Route{Pattern: e.pattern, Handlers: len(e.handlers)})
	}
	return routes
}

// InstanceKey returns the registry key the router was created with.
func (r *Router[M]) InstanceKey() string {
	return r.instanceKey
}

// Mixins returns the capability set shared with handlers.
func (r *Router[M]) Mixins() M {
	return r.mixins
}

// register validates the actions, compiles the pattern and appends a new
// entry. Nothing is appended when either step fails.
func (r *Router[M]) register(pattern any, display string, actions []Action[M]) error {
	for i, a := range actions {
		if err := validateAction[M](a); err != nil {
			return fmt.Errorf("handler #%d for '%s': %w", i, display, err)
		}
	}

	matcher, params, err := r.compiler(pattern, pathpattern.Options{
		CaseSensitive: r.caseSensitive,
		Strict:        r.strict,
	})
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrInvalidPattern, display, err)
	}

	e := &entry[M]{
		pattern:  display,
		matcher:  matcher,
		handlers: make([]descriptor[M], 0, len(actions)),
	}
	for _, a := range actions {
		e.handlers = append(e.handlers, descriptor[M]{action: a, params: params})
	}

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	r.logger.Debug("route registered",
		logger.Pattern(display),
		logger.Count("handlers", len(actions)),
	)

	return nil
}
