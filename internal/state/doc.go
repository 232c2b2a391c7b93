// Package state owns the process-wide latest upstream snapshot.
//
// The poller is the only writer: after a successful fetch it replaces the
// whole Document atomically. The websocket hub (connect-time snapshot push)
// and the REST API read it concurrently without locking — the pointer swap
// guarantees they never observe a half-updated document.
package state
