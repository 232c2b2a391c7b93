// Package bus implements the in-process publish/subscribe registry that
// connects the poller to websocket clients and webhook targets.
//
// Subscribe binds a listener to one topic name and returns a Subscription
// handle; Unsubscribe removes exactly that binding and is idempotent.
// Publish delivers an event synchronously to every listener of the topic in
// registration order. A listener error is logged and does not stop delivery
// to the remaining listeners.
//
// Events are wire-ready JSON bytes: the publisher marshals once and every
// listener receives the same buffer. Listeners must not modify it.
package bus
