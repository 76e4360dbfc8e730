// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package metrics provides Prometheus instrumentation for Reelay:
// feed assembly performance, batch cache efficiency, event bus throughput
// and drops, interaction counter mutations, and API endpoint latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed page requests",
		},
		[]string{"feed", "result"}, // feed: "main", "following"; result: "success", "error"
	)

	FeedPageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_page_duration_seconds",
			Help:    "End-to-end feed page assembly duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"feed"},
	)

	BatchGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_batch_generation_duration_seconds",
			Help:    "Duration of recommendation batch generation on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)

	HydrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_hydration_duration_seconds",
			Help:    "Duration of batched content hydration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	HydrationDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_hydration_dropped_total",
			Help: "Total number of cached content ids that no longer resolved at hydration time",
		},
	)

	// Batch Cache Metrics
	BatchCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_cache_hits_total",
			Help: "Total number of batch cache hits",
		},
		[]string{"store"}, // "redis", "memory"
	)

	BatchCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_cache_misses_total",
			Help: "Total number of batch cache misses",
		},
		[]string{"store"},
	)

	BatchCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_cache_errors_total",
			Help: "Total number of batch cache store errors (degraded to miss)",
		},
		[]string{"store", "operation"}, // operation: "get", "put", "size", "invalidate"
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events accepted by the bus",
		},
		[]string{"kind"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of domain events dropped due to a full buffer",
		},
		[]string{"kind", "stage"}, // stage: "publish", "subscriber"
	)

	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_delivered_total",
			Help: "Total number of events delivered to subscriber handlers",
		},
		[]string{"subscriber"},
	)

	SubscriberFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_subscriber_failures_total",
			Help: "Total number of subscriber handler failures (caught and discarded)",
		},
		[]string{"subscriber"},
	)

	// Interaction Counter Metrics
	CounterMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_counter_mutations_total",
			Help: "Total number of interaction counter mutations",
		},
		[]string{"counter", "result"}, // counter: "likes", "saves", "shares", "views"
	)

	CounterMutationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interaction_counter_mutation_duration_seconds",
			Help:    "Duration of transactional interaction writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Recommender Metrics
	RecommenderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of recommendation provider calls",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	RecommenderBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_circuit_breaker_state",
			Help: "Recommender circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordFeedRequest records a completed feed page request.
func RecordFeedRequest(feed string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	FeedRequestsTotal.WithLabelValues(feed, result).Inc()
	FeedPageDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordBatchCacheLookup records a batch cache hit or miss.
func RecordBatchCacheLookup(store string, hit bool) {
	if hit {
		BatchCacheHits.WithLabelValues(store).Inc()
		return
	}
	BatchCacheMisses.WithLabelValues(store).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCounterMutation records an interaction counter mutation outcome.
func RecordCounterMutation(counter string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	CounterMutations.WithLabelValues(counter, result).Inc()
	CounterMutationDuration.Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
