// Package ui renders the lockdash Bubble Tea dashboard.
//
// The model never talks to the backend directly. It reads state.Store
// snapshots, the transport's connection status and the scan tracker on a
// one-second tick, and routes operator actions (door, mode, refresh,
// endpoint, theme) through the Controller interface as tea.Cmds so the
// event loop never blocks on the network.
//
// Door keys update the rendered door state at once and send the command in
// the background. The next state fetch shows what the device confirmed.
package ui
