package utils

import (
	"time"

	"property-catalog/pkg/metrics"
)

// RecordMongoOperation observes the duration since start and counts err, if any.
func RecordMongoOperation(operation, collection string, start time.Time, err error) {
	metrics.MongoOperationDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues(operation, collection).Inc()
	}
}

// RecordRedisOperation observes the duration since start and counts err, if any.
func RecordRedisOperation(operation string, start time.Time, err error) {
	metrics.RedisOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisErrorsTotal.WithLabelValues(operation).Inc()
	}
}

func RecordFileStoreOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.FileStoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
