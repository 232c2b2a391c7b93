// Package webhook republishes topic events to configured HTTP targets.
//
// Notifier subscribes to topics on the event bus, exactly like a websocket
// client does, and POSTs each event's JSON body to every matching target.
// Delivery is asynchronous and best-effort: failures are logged and counted,
// never fatal, and a slow target cannot block the publish fan-out.
//
// Target URLs are resolved from environment variables at delivery time so
// secrets stay out of the config file. A target with an event filter only
// receives the named topics; without one it receives everything.
package webhook
