package api

import "time"

// HealthResponse is the payload of GET /api/v1/health.
type HealthResponse struct {
	// Status is "ok" once a snapshot exists, "waiting" before the first
	// successful poll.
	Status string `json:"status"`

	// LastPoll is when the current snapshot was fetched; omitted before the
	// first successful poll.
	LastPoll *time.Time `json:"last_poll,omitempty"`

	// Clients is the number of currently connected WebSocket clients.
	Clients int `json:"clients"`

	// Topics is the number of configured topics.
	Topics int `json:"topics"`
}

// TopicResponse is one registry entry in GET /api/v1/topics.
type TopicResponse struct {
	Name   string   `json:"name"`
	Emit   string   `json:"emit"`
	Fields []string `json:"fields"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
