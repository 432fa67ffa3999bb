// Package metrics exposes the bot's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "activitybot"

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Gateway events handled, by type.",
	}, []string{"type"})

	publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leaderboard_publishes_total",
		Help:      "Leaderboard publishes, by report kind and delivery mode.",
	}, []string{"kind", "mode"})

	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leaderboard_publish_errors_total",
		Help:      "Publish jobs that failed after the send fallback.",
	})

	openVoiceSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_voice_sessions",
		Help:      "Voice sessions currently being timed.",
	})

	publishQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "publish_queue_depth",
		Help:      "Publish jobs waiting in the queue.",
	})
)

func IncEvent(eventType string)    { eventsProcessed.WithLabelValues(eventType).Inc() }
func IncPublish(kind, mode string) { publishes.WithLabelValues(kind, mode).Inc() }
func IncPublishError()             { publishErrors.Inc() }
func SetOpenVoiceSessions(n int)   { openVoiceSessions.Set(float64(n)) }
func SetPublishQueueDepth(n int)   { publishQueueDepth.Set(float64(n)) }
