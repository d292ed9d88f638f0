package logger

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Error Handling
// ============================================================================

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Dispatch
// ============================================================================

// ResolveID creates an attribute for the id of a Resolve call.
func ResolveID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("resolve_id", id)
}

// Route creates an attribute for the path being resolved.
func Route(route string) slog.Attr {
	return slog.String("route", route)
}

// Pattern creates an attribute for a registered route pattern.
func Pattern(pattern string) slog.Attr {
	return slog.String("pattern", pattern)
}

// Params groups path parameters under the key "params", sorted by name.
// Returns empty Attr for no parameters.
func Params(params map[string]string) slog.Attr {
	if len(params) == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		as = append(as, slog.String(k, params[k]))
	}
	return slog.Attr{Key: "params", Value: slog.GroupValue(as...)}
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Key creates a generic key-value attribute.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}
