package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/lockdash/internal/realtime"
	"github.com/five82/lockdash/internal/scan"
	"github.com/five82/lockdash/internal/state"
)

// Bridge turns push events into store refreshes so the dashboard counters
// follow scans and enrollments without waiting for the next poll.
type Bridge struct {
	store  *state.Store
	days   int
	logger zerolog.Logger

	kick   chan struct{}
	unsub  func()
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartBridge subscribes to src and starts the refresh worker.
func StartBridge(ctx context.Context, src scan.Subscriber, store *state.Store, statsDays int, logger zerolog.Logger) *Bridge {
	ctx, cancel := context.WithCancel(ctx)
	b := &Bridge{
		store:  store,
		days:   statsDays,
		logger: logger.With().Str("component", "bridge").Logger(),
		kick:   make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	b.unsub = src.Subscribe(b.handle)
	go b.run(ctx)
	return b
}

// handle runs on the transport's reader goroutine and must not block.
func (b *Bridge) handle(msg realtime.Message) {
	switch msg.Type {
	case realtime.TypeEnrollmentSuccess, realtime.TypeEnrollmentFailed,
		realtime.TypeScanSuccess, realtime.TypeScanFailed:
		select {
		case b.kick <- struct{}{}:
		default:
		}
	case realtime.TypeSystemError:
		if text := msg.Text("message"); text != "" {
			b.store.SetError(text)
		}
	}
}

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.kick:
			b.logger.Debug().Msg("push outcome, refreshing stats")
			b.store.FetchStats(ctx, b.days)
		}
	}
}

// Close unsubscribes and waits for the worker to exit.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.unsub()
		b.cancel()
		<-b.done
	})
}
