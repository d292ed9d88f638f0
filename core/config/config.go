package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse is returned when environment variables cannot be parsed into the target.
var ErrParse = errors.New("failed to parse configuration from environment")

var (
	// Loaded configurations keyed by their reflect.Type.
	cache sync.Map

	dotenvOnce sync.Once
)

// Load populates cfg from environment variables using caarlos0/env tags.
// A .env file in the working directory is loaded once, before the first
// parse; variables already set in the environment take precedence.
// Each type is parsed once; later calls copy the cached value into cfg.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	})

	t := reflect.TypeFor[T]()
	if v, ok := cache.Load(t); ok {
		*cfg = v.(T)
		return nil
	}

	var fresh T
	if err := env.Parse(&fresh); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	v, _ := cache.LoadOrStore(t, fresh)
	*cfg = v.(T)
	return nil
}

// MustLoad is like Load but panics on error. Useful during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
