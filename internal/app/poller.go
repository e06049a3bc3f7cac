package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/lockdash/internal/state"
)

const defaultPollInterval = 5 * time.Second

// StartPoller launches a background goroutine that refreshes state and
// stats at a fixed cadence. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, interval time.Duration, statsDays int) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll(ctx, store, statsDays)
			}
		}
	}()
}

func poll(ctx context.Context, store *state.Store, statsDays int) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.FetchState(gctx)
		return nil
	})
	g.Go(func() error {
		store.FetchStats(gctx, statsDays)
		return nil
	})
	_ = g.Wait()
}

// Refresh fetches state, stats and config in parallel and waits for all
// three. Failures are absorbed by the store.
func Refresh(ctx context.Context, store *state.Store, statsDays int) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.FetchState(gctx)
		return nil
	})
	g.Go(func() error {
		store.FetchStats(gctx, statsDays)
		return nil
	})
	g.Go(func() error {
		store.FetchConfig(gctx)
		return nil
	})
	_ = g.Wait()
}
