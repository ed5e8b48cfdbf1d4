package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
	MongoOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_operation_duration_seconds",
			Help:    "MongoDB operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)
	MongoErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_errors_total",
			Help: "Total number of failed MongoDB operations",
		},
		[]string{"operation", "collection"},
	)
	RedisOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	RedisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of failed Redis operations",
		},
		[]string{"operation"},
	)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_hits_total",
			Help: "Total number of Redis cache hits",
		},
	)
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_misses_total",
			Help: "Total number of Redis cache misses",
		},
	)
	FileStoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_operations_total",
			Help: "Image file store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	OrphanedImagesDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orphaned_images_deleted_total",
			Help: "Image files removed by the orphan sweep",
		},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			MongoOperationDuration,
			MongoErrorsTotal,
			RedisOperationDuration,
			RedisErrorsTotal,
			CacheHitsTotal,
			CacheMissesTotal,
			FileStoreOperationsTotal,
			OrphanedImagesDeletedTotal,
		)
	})
}
