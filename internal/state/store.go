package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/lockdash/internal/lockapi"
)

// User-facing messages recorded in Snapshot.Error.
const (
	MsgStateUnavailable = "Cannot reach the lock backend"
	MsgStatsUnavailable = "Cannot load access statistics"
	MsgModeFailed       = "Cannot switch mode"
	MsgConfigFailed     = "Cannot update configuration"
)

// DefaultStatsDays is the statistics window used when FetchStats gets days <= 0.
const DefaultStatsDays = 7

// Snapshot is the device-facing state shared by every view.
type Snapshot struct {
	Mode        lockapi.Mode
	DoorStatus  lockapi.DoorStatus
	Config      *lockapi.RuntimeConfig
	Stats       *lockapi.AccessStats
	IsLoading   bool
	Error       string
	LastUpdated time.Time
}

// Initial returns the snapshot a new Store starts from.
func Initial() Snapshot {
	return Snapshot{
		Mode:       lockapi.ModeEntryExit,
		DoorStatus: lockapi.DoorLocked,
	}
}

// HasError reports whether the last action left an error annotation.
func (s Snapshot) HasError() bool {
	return s.Error != ""
}

func (s Snapshot) clone() Snapshot {
	dup := s
	if s.Config != nil {
		cfg := *s.Config
		dup.Config = &cfg
	}
	dup.Stats = s.Stats.Clone()
	return dup
}

// Gateway is the slice of the REST client the store needs. *lockapi.Client
// satisfies it.
type Gateway interface {
	GetState(ctx context.Context) (lockapi.SystemState, error)
	SetMode(ctx context.Context, mode lockapi.Mode) error
	GetConfig(ctx context.Context) (lockapi.RuntimeConfig, error)
	UpdateConfig(ctx context.Context, update lockapi.ConfigUpdate) (lockapi.ConfigUpdateResponse, error)
	GetStats(ctx context.Context, days int) (lockapi.AccessStats, error)
}

var _ Gateway = (*lockapi.Client)(nil)

// Store owns the snapshot. Views read it with Snapshot and change it only
// through the action methods.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	api    Gateway
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for absorbed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithInitial overrides the starting snapshot.
func WithInitial(snap Snapshot) Option {
	return func(s *Store) {
		s.snap = snap.clone()
	}
}

// New builds a Store backed by api.
func New(api Gateway, opts ...Option) *Store {
	s := &Store{
		snap:   Initial(),
		api:    api,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "store").Logger()
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s *Store) apply(fn func(Snapshot) Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = fn(s.snap)
}

// FetchState refreshes mode and door status. Failures are recorded in
// Snapshot.Error and never returned.
func (s *Store) FetchState(ctx context.Context) {
	st, err := s.api.GetState(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fetch state failed")
		s.apply(func(snap Snapshot) Snapshot { return withError(snap, MsgStateUnavailable) })
		return
	}
	at := s.now()
	s.apply(func(snap Snapshot) Snapshot { return withState(snap, st, at) })
}

// FetchStats refreshes access statistics for the last days days (7 when
// days <= 0). Failures are recorded in Snapshot.Error and never returned.
func (s *Store) FetchStats(ctx context.Context, days int) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	stats, err := s.api.GetStats(ctx, days)
	if err != nil {
		s.logger.Warn().Err(err).Int("days", days).Msg("fetch stats failed")
		s.apply(func(snap Snapshot) Snapshot { return withError(snap, MsgStatsUnavailable) })
		return
	}
	at := s.now()
	s.apply(func(snap Snapshot) Snapshot { return withStats(snap, stats, at) })
}

// FetchConfig refreshes the runtime configuration. Config is not critical:
// a failure is logged only and leaves Snapshot.Error alone.
func (s *Store) FetchConfig(ctx context.Context) {
	cfg, err := s.api.GetConfig(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fetch config failed")
		return
	}
	at := s.now()
	s.apply(func(snap Snapshot) Snapshot { return withConfig(snap, cfg, at) })
}

// UpdateConfig sends a partial configuration and commits the
// server-confirmed result. Failures are recorded and returned.
func (s *Store) UpdateConfig(ctx context.Context, update lockapi.ConfigUpdate) error {
	s.apply(beginAction)

	resp, err := s.api.UpdateConfig(ctx, update)
	if err != nil {
		s.logger.Error().Err(err).Msg("update config failed")
		msg := userMessage(err, MsgConfigFailed)
		s.apply(func(snap Snapshot) Snapshot { return endAction(snap, msg) })
		return err
	}

	at := s.now()
	s.apply(func(snap Snapshot) Snapshot {
		snap = withConfig(snap, resp.Config, at)
		notice := ""
		if !resp.Success {
			// Saved but not applied, e.g. the UART could not reconnect.
			notice = resp.Message
			if notice == "" {
				notice = MsgConfigFailed
			}
		}
		return endAction(snap, notice)
	})
	return nil
}

// SetMode asks the backend to switch mode and commits it locally only after
// the backend confirms. Failures are recorded and returned.
func (s *Store) SetMode(ctx context.Context, mode lockapi.Mode) error {
	s.apply(beginAction)

	if err := s.api.SetMode(ctx, mode); err != nil {
		s.logger.Error().Err(err).Str("mode", string(mode)).Msg("set mode failed")
		msg := userMessage(err, MsgModeFailed)
		s.apply(func(snap Snapshot) Snapshot { return endAction(snap, msg) })
		return err
	}

	at := s.now()
	s.apply(func(snap Snapshot) Snapshot { return endAction(withMode(snap, mode, at), "") })
	return nil
}

// SetDoorStatus records the believed door state immediately. It makes no
// network call; issuing the door command is the caller's job.
func (s *Store) SetDoorStatus(status lockapi.DoorStatus) {
	s.apply(func(snap Snapshot) Snapshot { return withDoor(snap, status) })
}

// SetError annotates the snapshot with a view-level failure. An empty msg
// clears the annotation.
func (s *Store) SetError(msg string) {
	s.apply(func(snap Snapshot) Snapshot { return withError(snap, msg) })
}

func userMessage(err error, fallback string) string {
	if detail := lockapi.Detail(err); detail != "" {
		return detail
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback + " (timed out)"
	}
	return fallback
}
