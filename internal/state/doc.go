// Package state holds the device-facing state shared by every lockdash view.
//
// # Overview
//
// The Store is where REST-fetched truth meets push-driven UI state. The
// poller, the push-event bridge and the UI all change it through a small
// set of actions, and every view reads the same Snapshot.
//
//	Poller / Bridge / UI            Views:
//	┌──────────────────┐            ┌──────────────────┐
//	│ FetchState()     │            │                  │
//	│ FetchStats()     │            │                  │
//	│ SetMode()        │───────────→│ store.Snapshot() │
//	│ SetDoorStatus()  │  (mutex)   │       ↓          │
//	│ UpdateConfig()   │            │  render          │
//	└──────────────────┘            └──────────────────┘
//
// # Actions
//
// Fetch actions absorb their failures: FetchState and FetchStats record a
// user-facing message in Snapshot.Error, FetchConfig only logs. Success
// clears Error.
//
// UpdateConfig and SetMode are user-initiated. They set IsLoading, clear
// Error, call the backend and commit only the confirmed result. Failures
// are recorded in Error and also returned to the caller.
//
// SetDoorStatus is local and synchronous. It records what the operator
// believes the door state to be; the door command itself is sent separately
// by the caller, so the believed and confirmed states can diverge until the
// next FetchState.
//
// # Reducers
//
// Every mutation is a pure function from Snapshot to Snapshot, applied under
// the Store's mutex. Snapshot returns a deep copy, so callers may keep and
// mutate it freely.
//
// # Concurrency
//
// Actions may overlap. The last write to IsLoading and Error wins; a slow
// SetMode finishing after a fast UpdateConfig can clear the loading flag the
// other one set.
package state
