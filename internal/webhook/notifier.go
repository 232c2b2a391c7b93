package webhook

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/statecast/statecast/internal/bus"
	"github.com/statecast/statecast/internal/config"
	"github.com/statecast/statecast/internal/metrics"
	"github.com/statecast/statecast/internal/topic"
)

const deliverTimeout = 10 * time.Second

// Notifier delivers topic events to configured HTTP targets.
type Notifier struct {
	targets []config.Webhook
	client  *http.Client
}

// New creates a Notifier. A Notifier with no targets is valid — Bind becomes
// a no-op.
func New(targets []config.Webhook) *Notifier {
	return &Notifier{
		targets: targets,
		client:  &http.Client{Timeout: deliverTimeout},
	}
}

// Bind subscribes the notifier to every registry topic with at least one
// matching target. Returned subscriptions live for the process lifetime, so
// no handle is kept.
func (n *Notifier) Bind(b *bus.Bus, reg *topic.Registry) {
	if len(n.targets) == 0 {
		return
	}
	for _, name := range reg.Names() {
		targets := n.targetsFor(name)
		if len(targets) == 0 {
			continue
		}
		topicName := name
		b.Subscribe(topicName, func(event []byte) error {
			// Copy the buffer — delivery outlives the publish call.
			body := make([]byte, len(event))
			copy(body, event)
			go n.deliver(topicName, targets, body)
			return nil
		})
		slog.Info("webhook: bound topic", "topic", name, "targets", len(targets))
	}
}

// targetsFor returns the targets whose event filter admits the topic.
func (n *Notifier) targetsFor(topicName string) []config.Webhook {
	var out []config.Webhook
	for _, t := range n.targets {
		if len(t.Events) == 0 {
			out = append(out, t)
			continue
		}
		for _, ev := range t.Events {
			if ev == topicName {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// deliver POSTs body to each target. Errors are logged but do not affect the
// caller.
func (n *Notifier) deliver(topicName string, targets []config.Webhook, body []byte) {
	for _, t := range targets {
		url := t.URL()
		if url == "" {
			slog.Warn("webhook: target URL unresolved — skipping", "url_env", t.URLEnv)
			continue
		}
		if err := n.post(url, body); err != nil {
			metrics.WebhookDeliveries.WithLabelValues("error").Inc()
			slog.Error("webhook: delivery failed", "topic", topicName, "err", err)
			continue
		}
		metrics.WebhookDeliveries.WithLabelValues("success").Inc()
		slog.Debug("webhook: delivered", "topic", topicName)
	}
}

func (n *Notifier) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
