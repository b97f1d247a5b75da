package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdrop_http_requests_total",
			Help: "HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkdrop_http_request_duration_seconds",
			Help:    "HTTP request duration by route pattern",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	HTTPResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkdrop_http_response_bytes",
			Help:    "HTTP response body size by route pattern",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"route"},
	)

	// Business metrics
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdrop_updates_total",
			Help: "Webhook updates by outcome",
		},
		[]string{"outcome"}, // "ignored", "topic_is_closed", "topic_closed", "ok", "error"
	)

	LinksStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkdrop_links_stored_total",
			Help: "Total links submitted to daily link sets",
		},
	)

	Confirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdrop_confirmations_total",
			Help: "Topic-closed confirmation messages by result",
		},
		[]string{"result"}, // "sent" or "failed"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkdrop_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkdrop_store_latency_seconds",
			Help:    "Key-value store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"op"},
	)
)

// Update outcomes.
const (
	OutcomeIgnored       = "ignored"
	OutcomeTopicIsClosed = "topic_is_closed"
	OutcomeTopicClosed   = "topic_closed"
	OutcomeOK            = "ok"
	OutcomeError         = "error"
)
