// Package app is the composition root for lockdash.
//
// # Overview
//
// Build loads configuration and preferences, sets up logging and wires the
// REST gateway, the shared store, the realtime transport and the scan
// tracker into a Services value. Start brings them to life:
//
//  1. Subscribe the push-event Bridge to the transport
//  2. Connect the transport (it reconnects on its own from here on)
//  3. Refresh state, stats and config in parallel
//  4. Launch the poller for state and stats
//
// Run does the above and then hands the Services to the Bubble Tea UI,
// closing everything when the UI exits. The cobra commands in cmd/lockdash
// reuse Build and Start without the UI.
//
// # Components
//
//   - app.go: Options, Services, Build, Start, Close and Run
//   - poller.go: fixed-cadence refresh and the errgroup fan-out
//   - bridge.go: push outcomes trigger a stats refresh off the reader goroutine
//   - controller.go: operator actions the UI calls (door, mode, endpoint, theme)
//
// # Data Flow
//
//	┌────────────┐  poll / refresh   ┌─────────────┐   Snapshot()   ┌──────┐
//	│  lockapi   │ ◄──────────────── │ state.Store │ ─────────────► │  ui  │
//	└────────────┘                   └─────────────┘                └──────┘
//	                                        ▲                          ▲
//	                                 Bridge │ FetchStats               │ Progress()
//	┌────────────┐   push events   ┌────────┴───┐                ┌─────┴──────┐
//	│  backend   │ ──────────────► │  realtime  │ ─────────────► │    scan    │
//	└────────────┘                 └────────────┘                └────────────┘
package app
