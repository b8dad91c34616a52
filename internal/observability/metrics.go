// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ListingLatency records listing pipeline latency by resource and sort mode.
	ListingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_listing_latency_seconds",
		Help:    "Listing query latency in seconds by resource and sort mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "sort"})

	// CacheHits counts cache-aside hits by cache key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_hits_total",
		Help: "Total number of cache hits by key prefix",
	}, []string{"prefix"})

	// CacheMisses counts cache-aside misses by cache key prefix.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_misses_total",
		Help: "Total number of cache misses by key prefix",
	}, []string{"prefix"})

	// AuthEvents counts authentication events by type and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_auth_events_total",
		Help: "Total number of authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// PostsCreated counts forum posts created, labelled by whether the
	// post opened a new thread.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"kind"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// TrackListing returns a function that records listing latency when called.
func TrackListing(resource, sort string) func() {
	start := time.Now()
	return func() {
		ListingLatency.WithLabelValues(resource, sort).Observe(time.Since(start).Seconds())
	}
}

// RecordAuthEvent increments the auth events counter.
func RecordAuthEvent(event, outcome string) {
	AuthEvents.WithLabelValues(event, outcome).Inc()
}
