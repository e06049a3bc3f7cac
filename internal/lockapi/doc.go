// Package lockapi provides an HTTP client for the door-lock backend API.
//
// # Overview
//
// The client is a thin, stateless request/response wrapper over a
// configurable base endpoint. It does not cache anything; the shared state
// store in package state decides what to keep.
//
// # Files
//
//   - client.go: core transport, state/config/statistics/log endpoints
//   - access.go: per-credential endpoints (fingerprint, RFID, keypad, face, users)
//   - errors.go: APIError and FastAPI detail extraction
//   - types.go: wire types mirroring the backend schema
//
// # Response Convention
//
// Every endpoint's JSON body is decoded directly into the result type.
// There is no {"data": ...} envelope to unwrap.
//
// # Errors
//
// Transport failures are wrapped ("execute request: ..."). Responses with a
// status of 400 or above become *APIError, whose Detail carries the
// backend's user-facing message. Use Detail(err) to pull it out.
//
// # Runtime Endpoint Changes
//
// SetBaseURL swaps the endpoint under a lock, so requests already in flight
// finish against the old host and new ones use the new host.
package lockapi
