// Package metrics declares the Prometheus instrumentation for statecast.
// All collectors are registered on the default registry via promauto and
// exposed by the /metrics endpoint mounted in main.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsTotal counts upstream poll attempts by result ("success" | "error").
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statecast_polls_total",
		Help: "Total upstream poll attempts by result",
	}, []string{"result"})

	// PollDuration tracks the duration of one fetch+decode cycle.
	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "statecast_poll_duration_seconds",
		Help:    "Duration of one upstream fetch and decode",
		Buckets: prometheus.DefBuckets,
	})

	// EventsPublished counts topic events published on the bus.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statecast_events_published_total",
		Help: "Total topic change events published",
	}, []string{"topic"})

	// ConnectedClients tracks currently connected WebSocket clients.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "statecast_connected_clients",
		Help: "Currently connected WebSocket clients",
	})

	// ActiveSubscriptions tracks live listener bindings on the event bus.
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "statecast_active_subscriptions",
		Help: "Currently active event bus subscriptions",
	})

	// WebhookDeliveries counts webhook POSTs by result ("success" | "error").
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statecast_webhook_deliveries_total",
		Help: "Total webhook delivery attempts by result",
	}, []string{"result"})
)
