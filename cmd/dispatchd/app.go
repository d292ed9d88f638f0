package main

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// App is the capability set every handler reaches through Context.Mixins.
type App struct {
	Name    string
	Log     *slog.Logger
	Started time.Time

	requests atomic.Int64
}

func newApp(name string, log *slog.Logger) *App {
	return &App{
		Name:    name,
		Log:     log,
		Started: time.Now(),
	}
}

// Count records one resolved request and returns the running total.
func (a *App) Count() int64 {
	return a.requests.Add(1)
}
