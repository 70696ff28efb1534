// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikesTotal counts like and unlike writes by action and result.
	LikesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whvmatch_likes_total",
		Help: "Total number of like store writes by action and result",
	}, []string{"action", "result"})

	// MutualMatchesTotal counts like writes that completed a mutual match.
	MutualMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whvmatch_mutual_matches_total",
		Help: "Total number of mutual matches detected",
	})

	// NotificationDispatch counts notification deliveries by type and outcome.
	NotificationDispatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whvmatch_notification_dispatch_total",
		Help: "Total number of notification dispatch attempts by type and outcome",
	}, []string{"type", "outcome"})

	// NotificationDispatchLatency records how long a single delivery took.
	NotificationDispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "whvmatch_notification_dispatch_latency_seconds",
		Help:    "Notification dispatch latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "whvmatch_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeFeedSubscribers is the number of open like change-feed subscriptions.
	LikeFeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whvmatch_like_feed_subscribers",
		Help: "Number of active like change-feed subscriptions",
	})

	// LikeFeedEvents counts change events published to the like feed by event type.
	LikeFeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whvmatch_like_feed_events_total",
		Help: "Total like change events fanned out to subscribers",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whvmatch_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLike records the outcome of a like or unlike write.
func RecordLike(action string, err error, changed bool) {
	result := "unchanged"
	switch {
	case err != nil:
		result = "error"
	case changed:
		result = "changed"
	}
	LikesTotal.WithLabelValues(action, result).Inc()
}
