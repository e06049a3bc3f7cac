// Package scan folds enrollment and scan push events into a view model.
package scan

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/lockdash/internal/realtime"
)

// Phase is the coarse state of the current enrollment or scan flow.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseWaiting Phase = "waiting"
	PhaseSuccess Phase = "success"
	PhaseDenied  Phase = "denied"
)

// DefaultHistory is the number of recent events kept when no size is given.
const DefaultHistory = 20

// Progress describes the latest enrollment or scan outcome.
type Progress struct {
	Phase     Phase
	Message   string
	UpdatedAt time.Time
}

// Event is one recorded push event.
type Event struct {
	Type    string
	Message string
	At      time.Time
}

// Failure reports whether the event is a negative outcome.
func (e Event) Failure() bool {
	switch e.Type {
	case realtime.TypeEnrollmentFailed, realtime.TypeScanFailed, realtime.TypeSystemError:
		return true
	}
	return false
}

// Subscriber is the part of the transport the tracker needs.
type Subscriber interface {
	Subscribe(h realtime.Handler) (unsubscribe func())
}

// Tracker records push events as they arrive.
type Tracker struct {
	mu       sync.RWMutex
	progress Progress
	events   []Event
	next     int
	full     bool

	logger zerolog.Logger
	now    func() time.Time
	unsub  func()
	once   sync.Once
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithHistory sets the size of the recent-events ring.
func WithHistory(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.events = make([]Event, n)
		}
	}
}

// WithLogger sets the tracker's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker subscribes to src and starts recording.
func NewTracker(src Subscriber, opts ...Option) *Tracker {
	t := &Tracker{
		progress: Progress{Phase: PhaseIdle},
		events:   make([]Event, DefaultHistory),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.unsub = src.Subscribe(t.Handle)
	return t
}

// Handle applies one push event. Unknown types are ignored.
func (t *Tracker) Handle(msg realtime.Message) {
	text := msg.Text("message")

	var phase Phase
	switch msg.Type {
	case realtime.TypeEnrollmentStatus:
		phase = PhaseWaiting
	case realtime.TypeEnrollmentSuccess, realtime.TypeScanSuccess:
		phase = PhaseSuccess
	case realtime.TypeEnrollmentFailed, realtime.TypeScanFailed:
		phase = PhaseDenied
	case realtime.TypeSystemError:
		t.logger.Warn().Str("message", text).Msg("backend reported system error")
	default:
		t.logger.Debug().Str("type", msg.Type).Msg("ignoring push event")
		return
	}

	at := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if phase != "" {
		t.progress = Progress{Phase: phase, Message: text, UpdatedAt: at}
	}
	t.record(Event{Type: msg.Type, Message: text, At: at})
}

func (t *Tracker) record(ev Event) {
	t.events[t.next] = ev
	t.next = (t.next + 1) % len(t.events)
	if t.next == 0 {
		t.full = true
	}
}

// Progress returns the latest outcome.
func (t *Tracker) Progress() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress
}

// Recent returns recorded events, newest first.
func (t *Tracker) Recent() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := t.next
	if t.full {
		count = len(t.events)
	}
	out := make([]Event, 0, count)
	for i := 1; i <= count; i++ {
		idx := (t.next - i + len(t.events)) % len(t.events)
		out = append(out, t.events[idx])
	}
	return out
}

// Reset returns progress to idle. Recorded events are kept.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = Progress{Phase: PhaseIdle, UpdatedAt: t.now()}
}

// Close unsubscribes from the transport. Safe to call more than once.
func (t *Tracker) Close() {
	t.once.Do(func() {
		if t.unsub != nil {
			t.unsub()
		}
	})
}
