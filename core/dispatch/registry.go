package dispatch

import (
	"fmt"
	"slices"
	"sync"
)

var (
	// Process-wide router instances keyed by WithInstanceKey. Never evicted.
	instances   = make(map[string]any)
	instancesMu sync.Mutex
)

// GetOrCreate returns the router registered under the WithInstanceKey key,
// ignoring the other options, or creates one from the options. A created
// router is stored under its key when a key was given; without a key
// GetOrCreate behaves like New.
//
// Example:
//
//	r, err := dispatch.GetOrCreate[struct{}](dispatch.WithInstanceKey("cli"))
//	// elsewhere in the process, the same *Router is returned:
//	same, err := dispatch.GetOrCreate[struct{}](dispatch.WithInstanceKey("cli"))
func GetOrCreate[M any](opts ...Option) (*Router[M], error) {
	s := newSettings(opts...)
	if s.instanceKey == "" {
		return build[M](s)
	}

	instancesMu.Lock()
	defer instancesMu.Unlock()

	if existing, ok := instances[s.instanceKey]; ok {
		r, ok := existing.(*Router[M])
		if !ok {
			return nil, fmt.Errorf("%w: '%s' holds %T", ErrInstanceTypeMismatch, s.instanceKey, existing)
		}
		return r, nil
	}

	r, err := build[M](s)
	if err != nil {
		return nil, err
	}
	instances[s.instanceKey] = r

	return r, nil
}

// MustGetOrCreate is like GetOrCreate but panics on error.
func MustGetOrCreate[M any](opts ...Option) *Router[M] {
	r, err := GetOrCreate[M](opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Instances returns the registered instance keys, sorted.
func Instances() []string {
	instancesMu.Lock()
	defer instancesMu.Unlock()

	keys := make([]string, 0, len(instances))
	for k := range instances {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
