package poller

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/statecast/statecast/internal/bus"
	"github.com/statecast/statecast/internal/config"
	"github.com/statecast/statecast/internal/document"
	"github.com/statecast/statecast/internal/metrics"
	"github.com/statecast/statecast/internal/state"
	"github.com/statecast/statecast/internal/topic"
)

// maxBodySize bounds the upstream response body read per fetch.
const maxBodySize = 4 << 20 // 4 MiB

// Poller fetches the upstream document on a fixed interval and publishes one
// event per changed topic.
type Poller struct {
	client   *http.Client
	url      string
	interval time.Duration
	registry *topic.Registry
	bus      *bus.Bus
	state    *state.Store
}

// authRoundTripper injects the configured API key header into every outgoing
// request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.Auth
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.auth.Header, t.auth.Key())
	return t.base.RoundTrip(req)
}

// New creates a Poller for the given poll configuration. The HTTP client is
// built once and reused across ticks.
func New(cfg config.Poll, reg *topic.Registry, b *bus.Bus, st *state.Store) *Poller {
	var transport http.RoundTripper = &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
		},
	}
	if cfg.Auth.Enabled() {
		transport = &authRoundTripper{base: transport, auth: cfg.Auth}
	}
	return &Poller{
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Timeout),
		},
		url:      cfg.URL,
		interval: time.Duration(cfg.Interval),
		registry: reg,
		bus:      b,
		state:    st,
	}
}

// Run starts the polling loop. It polls once immediately so clients have a
// snapshot as soon as possible, then on every tick. Run blocks until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.Poll(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Poll(ctx)
		}
	}
}

// Poll performs one fetch→diff→publish cycle. On fetch failure the tick is
// skipped entirely: the snapshot keeps its previous value and nothing is
// published.
func (p *Poller) Poll(ctx context.Context) {
	start := time.Now()
	doc, err := p.fetch(ctx)
	metrics.PollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		slog.Warn("poller: fetch failed — skipping tick", "url", p.url, "err", err)
		return
	}
	metrics.PollsTotal.WithLabelValues("success").Inc()

	prev, ok := p.state.Snapshot()
	if !ok {
		// First successful fetch seeds the snapshot; there is no previous
		// state to diff against, so no topic fires.
		p.state.Replace(doc)
		slog.Info("poller: seeded initial snapshot", "url", p.url, "keys", len(doc))
		return
	}

	for _, spec := range p.registry.Changed(prev, doc) {
		event, err := encodeEvent(spec, doc)
		if err != nil {
			slog.Error("poller: encode event failed", "topic", spec.Name, "err", err)
			continue
		}
		p.bus.Publish(spec.Name, event)
		metrics.EventsPublished.WithLabelValues(spec.Name).Inc()
		slog.Debug("poller: published change event", "topic", spec.Name, "emit", spec.Emit)
	}

	p.state.Replace(doc)
}

// fetch GETs the upstream URL and decodes the JSON body into a Document.
func (p *Poller) fetch(ctx context.Context) (document.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var doc document.Document
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return doc, nil
}

// encodeEvent builds the wire message for one fired topic: the projected
// payload merged at top level under the topic's emit label.
func encodeEvent(spec topic.Spec, doc document.Document) ([]byte, error) {
	payload := spec.Project(doc)
	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = spec.Emit
	return json.Marshal(msg)
}
