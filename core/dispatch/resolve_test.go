package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathdispatch/core/dispatch"
)

type noMixins = struct{}

type testContext = dispatch.Context[noMixins]

func fn(f func(c *testContext) error) dispatch.Action[noMixins] {
	return dispatch.Func[noMixins](func(_ context.Context, c *testContext) error {
		return f(c)
	})
}

// recorder collects handler names from concurrently running handlers.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) action(name string, delay time.Duration) dispatch.Action[noMixins] {
	return fn(func(c *testContext) error {
		time.Sleep(delay)
		r.add(name)
		return nil
	})
}

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	t.Run("earlier entry completes before later entry starts", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := dispatch.New[noMixins]()
		r.MustHandle("/a/{x}",
			rec.action("p1-first", 20*time.Millisecond),
			dispatch.Each[noMixins](rec.action("p1-group-a", 30*time.Millisecond), rec.action("p1-group-b", 10*time.Millisecond)),
		)
		r.MustHandle("/a/*", rec.action("p2", 0))

		_, err := r.Resolve(context.Background(), "/a/1", nil)
		require.NoError(t, err)

		calls := rec.get()
		require.Len(t, calls, 4)
		assert.Equal(t, "p1-first", calls[0])
		assert.ElementsMatch(t, []string{"p1-group-a", "p1-group-b"}, calls[1:3])
		assert.Equal(t, "p2", calls[3])
	})

	t.Run("all matching entries run", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := dispatch.New[noMixins]()
		r.MustHandle("/items/{id}", rec.action("first", 0))
		r.MustHandle("/other", rec.action("skipped", 0))
		r.MustHandle("/items/{id}", rec.action("duplicate", 0))
		r.MustHandleAll(rec.action("all", 0))

		c, err := r.Resolve(context.Background(), "/items/3", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "duplicate", "all"}, rec.get())
		assert.Equal(t, 3, c.Matched())
	})

	t.Run("handlers of one registration run in order", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := dispatch.New[noMixins]()
		r.MustHandle("/", rec.action("one", 15*time.Millisecond), rec.action("two", 5*time.Millisecond), rec.action("three", 0))

		_, err := r.Resolve(context.Background(), "/", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, rec.get())
	})
}

func TestResolveParams(t *testing.T) {
	t.Parallel()

	t.Run("binds named parameters", func(t *testing.T) {
		t.Parallel()

		var got dispatch.Params
		r := dispatch.New[noMixins]()
		r.MustHandle("/users/{id}", fn(func(c *testContext) error {
			got = c.Params
			assert.Equal(t, "42", c.Param("id"))
			return nil
		}))

		c, err := r.Resolve(context.Background(), "/users/42", nil)
		require.NoError(t, err)
		assert.Equal(t, dispatch.Params{"id": "42"}, got)
		assert.Equal(t, "42", c.Params.Get("id"))
	})

	t.Run("query and fragment are excluded from matching", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/shop/{id}", fn(func(c *testContext) error { return nil }))

		c, err := r.Resolve(context.Background(), "/shop/42?ref=x#top", nil)
		require.NoError(t, err)
		assert.Equal(t, "42", c.Params.Get("id"))
		assert.Equal(t, "/shop/42?ref=x#top", c.Route)
		assert.Equal(t, "/shop/42", c.Path)

		c, err = r.Resolve(context.Background(), "/shop/7#frag?not-a-query", nil)
		require.NoError(t, err)
		assert.Equal(t, "7", c.Params.Get("id"))
	})

	t.Run("nested actions share one params instance", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			seen = map[string]uintptr{}
		)
		capture := func(name string) dispatch.Action[noMixins] {
			return fn(func(c *testContext) error {
				mu.Lock()
				seen[name] = reflect.ValueOf(c.Params).Pointer()
				mu.Unlock()
				return nil
			})
		}

		r := dispatch.New[noMixins]()
		r.MustHandle("/p/{id}", dispatch.Each[noMixins](capture("h1"), dispatch.Each[noMixins](capture("h2"), capture("h3"))))

		c, err := r.Resolve(context.Background(), "/p/9", nil)
		require.NoError(t, err)

		require.Len(t, seen, 3)
		want := reflect.ValueOf(c.Params).Pointer()
		assert.Equal(t, want, seen["h1"])
		assert.Equal(t, want, seen["h2"])
		assert.Equal(t, want, seen["h3"])
	})

	t.Run("params are rebuilt for each handler of an entry", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/p/{id}",
			fn(func(c *testContext) error {
				c.Params["id"] = "mutated"
				return nil
			}),
			fn(func(c *testContext) error {
				assert.Equal(t, "5", c.Param("id"))
				return nil
			}),
		)

		_, err := r.Resolve(context.Background(), "/p/5", nil)
		require.NoError(t, err)
	})

	t.Run("unmatched path leaves context untouched", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/users/{id}", fn(func(c *testContext) error {
			c.Data["touched"] = true
			return nil
		}))

		data := map[string]any{"k": "v"}
		c, err := r.Resolve(context.Background(), "/posts/1", data)
		require.NoError(t, err)
		assert.Nil(t, c.Params)
		assert.Equal(t, map[string]any{"k": "v"}, c.Data)
		assert.Equal(t, 0, c.Matched())
	})

	t.Run("pattern without params yields empty params", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandleAll(fn(func(c *testContext) error { return nil }))

		c, err := r.Resolve(context.Background(), "/anything", nil)
		require.NoError(t, err)
		assert.NotNil(t, c.Params)
		assert.Empty(t, c.Params)
	})
}

func TestResolveContext(t *testing.T) {
	t.Parallel()

	t.Run("context is shared across handlers and entries", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/count", fn(func(c *testContext) error {
			c.Data["n"] = 1
			return nil
		}))
		r.MustHandleAll(fn(func(c *testContext) error {
			c.Data["n"] = c.Data["n"].(int) + 1
			return nil
		}))

		c, err := r.Resolve(context.Background(), "/count", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Data["n"])
		assert.Same(t, r, c.Router)
	})

	t.Run("caller data is used as is", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandleAll(fn(func(c *testContext) error {
			c.Data["seen"] = true
			return nil
		}))

		data := map[string]any{}
		c, err := r.Resolve(context.Background(), "/", data)
		require.NoError(t, err)
		assert.Equal(t, true, data["seen"])
		assert.Equal(t, data, c.Data)
	})

	t.Run("each resolve gets its own id", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		c1, err := r.Resolve(context.Background(), "/", nil)
		require.NoError(t, err)
		c2, err := r.Resolve(context.Background(), "/", nil)
		require.NoError(t, err)

		assert.NotEmpty(t, c1.ID)
		assert.NotEqual(t, c1.ID, c2.ID)
	})

	t.Run("go context reaches handlers", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		r := dispatch.New[noMixins]()
		r.MustHandleAll(dispatch.Func[noMixins](func(ctx context.Context, c *testContext) error {
			c.Data["value"] = ctx.Value(key{})
			return nil
		}))

		ctx := context.WithValue(context.Background(), key{}, "carried")
		c, err := r.Resolve(ctx, "/", nil)
		require.NoError(t, err)
		assert.Equal(t, "carried", c.Data["value"])
	})
}

func TestResolveGroupBodiesDoNotOverlap(t *testing.T) {
	t.Parallel()

	t.Run("children write distinct data keys", func(t *testing.T) {
		t.Parallel()

		const children, keys = 8, 1000

		actions := make([]dispatch.Action[noMixins], 0, children)
		for i := range children {
			actions = append(actions, fn(func(c *testContext) error {
				for k := range keys {
					c.Data[fmt.Sprintf("child-%d-key-%d", i, k)] = k
				}
				return nil
			}))
		}

		r := dispatch.New[noMixins]()
		r.MustHandle("/g", dispatch.Each[noMixins](actions...))

		c, err := r.Resolve(context.Background(), "/g", nil)
		require.NoError(t, err)
		assert.Len(t, c.Data, children*keys)
		assert.Equal(t, keys-1, c.Data[fmt.Sprintf("child-%d-key-%d", children-1, keys-1)])
	})

	t.Run("at most one body runs at a time", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		body := fn(func(c *testContext) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})

		r := dispatch.New[noMixins]()
		r.MustHandle("/g", dispatch.Each[noMixins](body, body, dispatch.Each[noMixins](body, body)))

		_, err := r.Resolve(context.Background(), "/g", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), peak.Load())
	})
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	t.Run("handler error aborts resolution", func(t *testing.T) {
		t.Parallel()

		called := false
		r := dispatch.New[noMixins]()
		r.MustHandle("/a", fn(func(c *testContext) error { return errBoom }))
		r.MustHandle("/{any}", fn(func(c *testContext) error {
			called = true
			return nil
		}))

		c, err := r.Resolve(context.Background(), "/a", nil)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.False(t, called)
		assert.ErrorIs(t, err, errBoom)

		var herr *dispatch.HandlerError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, "/a", herr.Pattern)
		assert.Equal(t, "/a", herr.Route)
	})

	t.Run("later handlers of the same entry do not run", func(t *testing.T) {
		t.Parallel()

		called := false
		r := dispatch.New[noMixins]()
		r.MustHandle("/a",
			fn(func(c *testContext) error { return errBoom }),
			fn(func(c *testContext) error {
				called = true
				return nil
			}),
		)

		_, err := r.Resolve(context.Background(), "/a", nil)
		assert.ErrorIs(t, err, errBoom)
		assert.False(t, called)
	})

	t.Run("group waits for all children and reports the error", func(t *testing.T) {
		t.Parallel()

		var slowDone bool
		var mu sync.Mutex
		r := dispatch.New[noMixins]()
		r.MustHandle("/g", dispatch.Each[noMixins](
			fn(func(c *testContext) error { return errBoom }),
			fn(func(c *testContext) error {
				time.Sleep(30 * time.Millisecond)
				mu.Lock()
				slowDone = true
				mu.Unlock()
				return nil
			}),
		))

		_, err := r.Resolve(context.Background(), "/g", nil)
		assert.ErrorIs(t, err, errBoom)

		mu.Lock()
		defer mu.Unlock()
		assert.True(t, slowDone, "sibling must settle before Resolve returns")
	})

	t.Run("panic becomes a handler error", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/p", fn(func(c *testContext) error { panic("kaboom") }))

		_, err := r.Resolve(context.Background(), "/p", nil)
		require.Error(t, err)

		var herr *dispatch.HandlerError
		require.ErrorAs(t, err, &herr)

		var perr *dispatch.PanicError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "kaboom", perr.Value())
		assert.NotEmpty(t, perr.Stack())
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("panic with error value unwraps to it", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandle("/p", fn(func(c *testContext) error { panic(errBoom) }))

		_, err := r.Resolve(context.Background(), "/p", nil)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		c, err := r.Resolve(context.Background(), "/bad/\xff", nil)
		assert.ErrorIs(t, err, dispatch.ErrInvalidInput)
		assert.Nil(t, c)
	})
}

func TestResolveStop(t *testing.T) {
	t.Parallel()

	t.Run("stop prevents later entries", func(t *testing.T) {
		t.Parallel()

		laterCalled := false
		r := dispatch.New[noMixins]()
		r.MustHandle("/s/{id}",
			fn(func(c *testContext) error {
				c.Data["last"] = "stopper"
				c.Stop()
				return nil
			}),
			fn(func(c *testContext) error {
				laterCalled = true
				return nil
			}),
		)
		r.MustHandleAll(fn(func(c *testContext) error {
			laterCalled = true
			return nil
		}))

		c, err := r.Resolve(context.Background(), "/s/1", nil)
		require.NoError(t, err)
		assert.False(t, laterCalled)
		assert.True(t, c.Stopped())
		assert.Equal(t, "stopper", c.Data["last"])
		assert.Equal(t, 1, c.Matched())
	})

	t.Run("stop inside a group lets siblings finish", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := dispatch.New[noMixins]()
		r.MustHandle("/g", dispatch.Each[noMixins](
			fn(func(c *testContext) error {
				c.Stop()
				return nil
			}),
			rec.action("sibling", 20*time.Millisecond),
		))
		r.MustHandleAll(rec.action("later", 0))

		c, err := r.Resolve(context.Background(), "/g", nil)
		require.NoError(t, err)
		assert.True(t, c.Stopped())
		assert.Equal(t, []string{"sibling"}, rec.get())
	})

	t.Run("each resolve starts unstopped", func(t *testing.T) {
		t.Parallel()

		r := dispatch.New[noMixins]()
		r.MustHandleAll(fn(func(c *testContext) error {
			if c.Path == "/stop" {
				c.Stop()
			}
			return nil
		}))

		c, err := r.Resolve(context.Background(), "/stop", nil)
		require.NoError(t, err)
		assert.True(t, c.Stopped())

		c, err = r.Resolve(context.Background(), "/go", nil)
		require.NoError(t, err)
		assert.False(t, c.Stopped())
	})
}

func TestResolveLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := dispatch.New[noMixins](dispatch.WithLogger(log))
	r.MustHandle("/users/{id}", fn(func(c *testContext) error { return nil }))
	r.MustHandle("/fail", fn(func(c *testContext) error { return errors.New("nope") }))

	c, err := r.Resolve(context.Background(), "/users/1", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "route registered")
	assert.Contains(t, out, "route matched")
	assert.Contains(t, out, "pattern=/users/{id}")
	assert.Contains(t, out, "resolve_id="+c.ID)

	_, err = r.Resolve(context.Background(), "/fail", nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "route handler failed")
}
