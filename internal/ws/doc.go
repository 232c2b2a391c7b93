// Package ws implements the WebSocket connection manager for statecast.
//
// Hub owns the set of connected clients. On connect a client immediately
// receives a full-state snapshot message, before any subscription exists, so
// it is never blind ahead of its first event:
//
//	{"type": "dataUpdate", "data": { /* entire current snapshot */ }}
//
// Clients then subscribe to topics by name:
//
//	{"type": "subscribe", "event": "<topicName>"}   — one topic
//	{"type": "subscribe", "event": "all"}           — every registered topic
//
// Each accepted subscription binds the topic to the client's send channel on
// the event bus. Unknown topics, unknown message types, and unparseable
// messages are logged and ignored — the connection stays open. When a topic
// fires, subscribed clients receive the published event verbatim:
//
//	{"type": "<emit label>", ...projected payload fields...}
//
// Writes are serialized through a per-client writePump goroutine; a client
// whose send buffer stays full is disconnected. On close or error every bus
// subscription held by the client is removed, so no delivery is ever
// attempted to a dead connection.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. WebSocket endpoint is mounted at /ws by the server.
package ws
