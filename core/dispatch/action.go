package dispatch

import (
	"context"
	"fmt"
)

// HandlerFunc handles a resolved path. Returning an error aborts the whole
// Resolve call. Call c.Stop to end dispatch early without an error.
type HandlerFunc[M any] func(ctx context.Context, c *Context[M]) error

// Action is a handler bound to a route: either a Single handler function or
// a Group of actions. The set of implementations is closed.
type Action[M any] interface {
	action(*Context[M])
}

// Single is an action invoking one handler function.
type Single[M any] struct {
	Fn HandlerFunc[M]
}

func (Single[M]) action(*Context[M]) {}

// Group is an action whose children are started together and share the
// parameters bound for their parent. Children may be groups themselves.
type Group[M any] struct {
	Children []Action[M]
}

func (Group[M]) action(*Context[M]) {}

// Func wraps a handler function into an action.
func Func[M any](fn HandlerFunc[M]) Action[M] {
	return Single[M]{Fn: fn}
}

// Each groups actions so they are started together when the route matches.
func Each[M any](children ...Action[M]) Action[M] {
	return Group[M]{Children: children}
}

// validateAction walks an action tree and reports the first leaf that is not
// an invocable handler.
func validateAction[M any](a Action[M]) error {
	switch v := a.(type) {
	case Single[M]:
		if v.Fn == nil {
			return fmt.Errorf("%w: nil handler function", ErrMalformedHandler)
		}
		return nil
	case Group[M]:
		for i, child := range v.Children {
			if err := validateAction[M](child); err != nil {
				return fmt.Errorf("group child #%d: %w", i, err)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: nil action", ErrMalformedHandler)
	default:
		return fmt.Errorf("%w: unexpected action %T", ErrMalformedHandler, a)
	}
}
