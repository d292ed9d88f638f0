package dispatch

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/pathdispatch/core/config"
	"github.com/dmitrymomot/pathdispatch/core/pathpattern"
)

// Config holds the router settings that can come from the environment.
type Config struct {
	Strict        bool   `env:"DISPATCH_STRICT" envDefault:"false"`
	CaseSensitive bool   `env:"DISPATCH_CASE_SENSITIVE" envDefault:"false"`
	InstanceKey   string `env:"DISPATCH_INSTANCE_KEY"`
}

// LoadConfig reads Config from the environment (and a .env file, if any).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures a Router during creation.
type Option func(*settings)

type settings struct {
	strict        bool
	caseSensitive bool
	mixins        any
	instanceKey   string
	logger        *slog.Logger
	compiler      pathpattern.Compiler
}

func newSettings(opts ...Option) settings {
	s := settings{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
		compiler: pathpattern.Compile,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithStrict makes a trailing slash significant when matching templates.
func WithStrict(strict bool) Option {
	return func(s *settings) {
		s.strict = strict
	}
}

// WithCaseSensitive makes template matching case-sensitive.
func WithCaseSensitive(sensitive bool) Option {
	return func(s *settings) {
		s.caseSensitive = sensitive
	}
}

// WithMixins sets the capability set exposed to handlers as Context.Mixins.
// Its type must be the router's mixin type.
func WithMixins[M any](mixins M) Option {
	return func(s *settings) {
		s.mixins = mixins
	}
}

// WithInstanceKey names the router in the process-wide registry used by
// GetOrCreate.
func WithInstanceKey(key string) Option {
	return func(s *settings) {
		s.instanceKey = key
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompiler replaces the pattern compiler.
func WithCompiler(c pathpattern.Compiler) Option {
	return func(s *settings) {
		if c != nil {
			s.compiler = c
		}
	}
}

// WithConfig applies settings loaded with LoadConfig.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.strict = cfg.Strict
		s.caseSensitive = cfg.CaseSensitive
		if cfg.InstanceKey != "" {
			s.instanceKey = cfg.InstanceKey
		}
	}
}
