package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/statecast/statecast/internal/document"
	"github.com/statecast/statecast/internal/state"
	"github.com/statecast/statecast/internal/topic"
)

// ClientCounter reports how many WebSocket clients are connected. Implemented
// by the ws.Hub.
type ClientCounter interface {
	Count() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	state    *state.Store
	registry *topic.Registry
	clients  ClientCounter
	mux      *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(st *state.Store, reg *topic.Registry, clients ClientCounter) http.Handler {
	h := &Handler{state: st, registry: reg, clients: clients, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/topics", h.topics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — poll freshness and connection counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Status:  "waiting",
		Clients: h.clients.Count(),
		Topics:  h.registry.Len(),
	}
	if at, ok := h.state.UpdatedAt(); ok {
		resp.Status = "ok"
		resp.LastPoll = &at
	}
	jsonResp(w, http.StatusOK, resp)
}

// snapshot returns GET /api/v1/snapshot — the full current upstream document.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := h.state.Snapshot()
	if !ok {
		doc = document.Document{}
	}
	jsonResp(w, http.StatusOK, doc)
}

// topics returns GET /api/v1/topics — the static topic registry.
func (h *Handler) topics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	specs := h.registry.Specs()
	out := make([]TopicResponse, 0, len(specs))
	for _, s := range specs {
		out = append(out, TopicResponse{Name: s.Name, Emit: s.Emit, Fields: s.Fields})
	}
	jsonResp(w, http.StatusOK, out)
}

// --- JSON helpers -----------------------------------------------------------

func jsonResp(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response failed", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, status int, msg string) {
	jsonResp(w, status, errorResponse{Error: msg})
}
