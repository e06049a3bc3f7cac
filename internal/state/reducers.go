package state

import (
	"time"

	"github.com/five82/lockdash/internal/lockapi"
)

// Reducers take the current snapshot plus arguments and return the next
// snapshot. They never touch the Store directly.

func withState(s Snapshot, st lockapi.SystemState, at time.Time) Snapshot {
	if st.Mode != "" {
		s.Mode = st.Mode
	}
	if st.DoorStatus != "" {
		s.DoorStatus = st.DoorStatus
	}
	s.Error = ""
	s.LastUpdated = at
	return s
}

func withStats(s Snapshot, stats lockapi.AccessStats, at time.Time) Snapshot {
	s.Stats = stats.Clone()
	s.Error = ""
	s.LastUpdated = at
	return s
}

func withConfig(s Snapshot, cfg lockapi.RuntimeConfig, at time.Time) Snapshot {
	s.Config = &cfg
	s.Error = ""
	s.LastUpdated = at
	return s
}

func withMode(s Snapshot, mode lockapi.Mode, at time.Time) Snapshot {
	s.Mode = mode
	s.LastUpdated = at
	return s
}

func withDoor(s Snapshot, status lockapi.DoorStatus) Snapshot {
	s.DoorStatus = status
	return s
}

func withError(s Snapshot, msg string) Snapshot {
	s.Error = msg
	return s
}

func beginAction(s Snapshot) Snapshot {
	s.IsLoading = true
	s.Error = ""
	return s
}

func endAction(s Snapshot, errMsg string) Snapshot {
	s.IsLoading = false
	if errMsg != "" {
		s.Error = errMsg
	}
	return s
}
