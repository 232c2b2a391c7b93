// Package api implements the HTTP REST read surface for statecast.
//
// New(store, registry, hub) returns an http.Handler that serves:
//
//	GET /api/v1/health    — process health: poll freshness, client count
//	GET /api/v1/snapshot  — the full current upstream snapshot
//	GET /api/v1/topics    — the configured topic registry
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
