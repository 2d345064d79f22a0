package app

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// App runs every server under one signal-aware context. The first runner to
// fail cancels the rest.
type App struct {
	runners []Runner
}

func New(runners ...Runner) *App {
	return &App{runners: runners}
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

func (a *App) RunContext(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range a.runners {
		r := r
		g.Go(func() error { return r.Run(gctx) })
	}
	return g.Wait()
}
