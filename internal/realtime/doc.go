// Package realtime maintains the push-event connection to the lock backend.
//
// # Overview
//
// Client owns exactly one WebSocket connection to <base>/ws and fans every
// inbound message out to its subscribers. Views subscribe when they mount
// and unsubscribe when they go away; they never see connection churn.
//
// # Lifecycle
//
//	disconnected ──Connect──> connecting ──ok──> connected
//	     ^                        │                  │
//	     │                     dial error      read/write error
//	     │                        v                  v
//	     └──── fixed retry delay ── disconnected <───┘
//
// Connect is a no-op while connecting or connected. A failed dial or a
// dropped connection schedules one retry after the fixed delay (3s by
// default); only one retry timer is ever pending and a successful connect
// cancels it. Close is the only way out: it stops the timer, closes the
// socket and disables further attempts.
//
// # Messages
//
// Frames are JSON objects of the form {"type": "...", ...}. Frames that do
// not decode to an object with a non-empty string type are dropped with a
// debug log and never reach subscribers. Connection errors are logged and
// drive the state machine; they are not delivered as messages.
//
// # Delivery
//
// One goroutine per connection reads frames and calls every handler
// synchronously, in receipt order, before reading the next frame. A slow
// handler delays delivery for everyone, so handlers must not block. A
// panicking handler is recovered and logged. Fan-out order between
// subscribers is not part of the contract.
//
// # Liveness
//
// While connected a ping goes out every ping period. The read deadline is
// the pong wait, pushed forward by every pong and every inbound frame, so a
// peer that stops answering fails the next read and takes the normal retry
// path.
//
// # Sending
//
// Send writes only when connected. Otherwise it logs a warning, drops the
// message and returns ErrNotConnected; callers retry through user action.
package realtime
