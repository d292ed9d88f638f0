// Package dispatch resolves path strings to handler actions.
//
// A Router holds an ordered table of patterns, each bound to one or more
// actions. Resolve matches a path against every pattern in registration
// order, binds the named parameters of each match and runs the bound
// actions, sharing one mutable Context between all of them. It knows
// nothing about HTTP; transports live in separate packages and call Resolve.
//
// # Basic Usage
//
//	r := dispatch.New[struct{}]()
//
//	r.MustHandle("/users/{id}", dispatch.Func[struct{}](func(ctx context.Context, c *dispatch.Context[struct{}]) error {
//		c.Data["user"] = c.Param("id")
//		return nil
//	}))
//
//	c, err := r.Resolve(ctx, "/users/42?tab=posts", nil)
//	if err != nil {
//		return err
//	}
//	fmt.Println(c.Data["user"]) // 42
//
// # Evaluation Order
//
// Every matching route runs, not only the first one. Routes are evaluated in
// registration order and the handlers bound to one route complete before the
// next route is evaluated. Registering the same pattern twice yields two
// independent routes.
//
// The actions passed to one registration run one after another. Parameters
// are bound anew for each of them and assigned to Context.Params.
//
// # Groups
//
// Each groups actions that are started together. Their bodies never run at
// the same time: a child holds the context while it executes and the next
// one proceeds when it returns, in no particular order. Every child of a group receives
// the parameter map of the enclosing action; they are never rebuilt from the
// match. Resolve waits for all children and reports the first error.
//
//	r.MustHandle("/orders/{id}",
//		dispatch.Func[App](loadOrder),
//		dispatch.Each[App](
//			dispatch.Func[App](loadCustomer),
//			dispatch.Each[App](dispatch.Func[App](loadItems), dispatch.Func[App](loadInvoice)),
//		),
//	)
//
// Handlers in a group may write different Data keys without locking.
//
// # Errors and Stopping
//
// Registration validates the whole action tree before anything is stored: a
// nil action or nil function fails with ErrMalformedHandler. Pattern errors
// wrap ErrInvalidPattern.
//
// A handler error (or panic) aborts Resolve; it is returned as a
// *HandlerError, panics carrying a *PanicError. To end dispatch early
// without an error a handler calls Context.Stop:
//
//	r.MustHandleAll(dispatch.Func[struct{}](func(ctx context.Context, c *dispatch.Context[struct{}]) error {
//		if c.Data["user"] == nil {
//			c.Stop()
//		}
//		return nil
//	}))
//
// # Mixins
//
// A router carries a capability set of type M, exposed to every handler as
// Context.Mixins:
//
//	type helpers struct{ db *sql.DB }
//
//	r := dispatch.New[helpers](dispatch.WithMixins(helpers{db: db}))
//
// # Shared Instances
//
// GetOrCreate returns a process-wide router by key, creating it on first use:
//
//	r := dispatch.MustGetOrCreate[struct{}](dispatch.WithInstanceKey("commands"))
//
// # Configuration
//
// Matching options can be loaded from the environment:
//
//	cfg, err := dispatch.LoadConfig() // DISPATCH_STRICT, DISPATCH_CASE_SENSITIVE, DISPATCH_INSTANCE_KEY
//	if err != nil {
//		return err
//	}
//	r := dispatch.New[struct{}](dispatch.WithConfig(cfg))
package dispatch
