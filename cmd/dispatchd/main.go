// Command dispatchd serves a small dispatch route table over HTTP and
// websockets. It is a runnable reference for wiring the packages together.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pathdispatch/core/config"
	"github.com/dmitrymomot/pathdispatch/core/dispatch"
	"github.com/dmitrymomot/pathdispatch/core/logger"
	"github.com/dmitrymomot/pathdispatch/integration/transport/server"
)

// Config is the application level configuration.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"dispatchd"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(logger.Key("app", cfg.AppName))

	dispatchCfg, err := dispatch.LoadConfig()
	if err != nil {
		log.Error("Failed to load dispatch config", logger.Component("dispatch"), logger.Error(err))
		os.Exit(1)
	}

	r, err := dispatch.GetOrCreate[*App](
		dispatch.WithConfig(dispatchCfg),
		dispatch.WithLogger(log.With(logger.Component("dispatch"))),
		dispatch.WithMixins(newApp(cfg.AppName, log)),
	)
	if err != nil {
		log.Error("Failed to create router", logger.Component("dispatch"), logger.Error(err))
		os.Exit(1)
	}
	if err := registerRoutes(r); err != nil {
		log.Error("Failed to register routes", logger.Component("dispatch"), logger.Error(err))
		os.Exit(1)
	}

	serverCfg, err := server.LoadConfig()
	if err != nil {
		log.Error("Failed to load server config", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}
	srv, err := server.New(r, serverCfg, server.WithLogger(log))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx))

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
