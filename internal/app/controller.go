package app

import (
	"context"
	"fmt"

	"github.com/five82/lockdash/internal/lockapi"
	"github.com/five82/lockdash/internal/prefs"
)

// Endpoint returns the active API base URL.
func (s *Services) Endpoint() string {
	return s.API.BaseURL()
}

// SetEndpoint switches the gateway and the transport to a new backend and
// persists the choice to prefs.
func (s *Services) SetEndpoint(raw string) error {
	u, err := lockapi.ParseBaseURL(raw)
	if err != nil {
		return err
	}
	base := u.String()
	if err := s.API.SetBaseURL(base); err != nil {
		return err
	}
	if err := s.Transport.SetBaseURL(base); err != nil {
		return err
	}

	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	updated, err := prefs.Update(s.PrefsPath, func(p *prefs.Prefs) {
		p.APIBaseURL = base
	})
	if err != nil {
		s.Logger.Warn().Err(err).Msg("persist endpoint")
		return fmt.Errorf("save endpoint: %w", err)
	}
	s.Prefs = updated
	s.Logger.Info().Str("api", base).Msg("endpoint changed")
	return nil
}

// SaveTheme persists the selected theme.
func (s *Services) SaveTheme(name string) error {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	updated, err := prefs.Update(s.PrefsPath, func(p *prefs.Prefs) {
		p.Theme = name
	})
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.Prefs = updated
	return nil
}

// SetDoor records the believed door state right away, then sends the door
// command. A failed command is annotated on the store; the next state fetch
// reconciles the believed state with the device.
func (s *Services) SetDoor(ctx context.Context, status lockapi.DoorStatus) error {
	s.Store.SetDoorStatus(status)
	if err := s.API.SetDoor(ctx, status); err != nil {
		s.Logger.Error().Err(err).Str("door", string(status)).Msg("door command failed")
		msg := "Door command failed"
		if detail := lockapi.Detail(err); detail != "" {
			msg += ": " + detail
		}
		s.Store.SetError(msg)
		return err
	}
	s.Logger.Info().Str("door", string(status)).Msg("door command sent")
	return nil
}

// ToggleMode switches between entry/exit and registration.
func (s *Services) ToggleMode(ctx context.Context) error {
	next := s.Store.Snapshot().Mode.Toggle()
	return s.Store.SetMode(ctx, next)
}

// Refresh re-fetches state, stats and config.
func (s *Services) Refresh(ctx context.Context) {
	Refresh(ctx, s.Store, s.Config.StatsDays)
}
