// Package httpbind serves HTTP requests with a dispatch.Router.
//
// The request URI (path and query) is resolved with the router; the
// request, the response writer and the method are available to handlers
// through Context.Data or the Request and ResponseWriter helpers:
//
//	r := dispatch.New[struct{}]()
//	r.MustHandle("/users/{id}", dispatch.Func[struct{}](func(ctx context.Context, c *dispatch.Context[struct{}]) error {
//		w := httpbind.ResponseWriter(c)
//		_, err := fmt.Fprintf(w, "user %s", c.Param("id"))
//		return err
//	}))
//
//	http.ListenAndServe(":8080", httpbind.Handler(r))
//
// The router has no notion of methods; handlers that care check
// httpbind.Request(c).Method themselves.
package httpbind
