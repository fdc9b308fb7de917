package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the ingestion pipeline
type Metrics struct {
	ManifestsProcessed prometheus.Counter
	ServicesExtracted  prometheus.Counter
	OrdersCreated      *prometheus.CounterVec
	ProcessingTime     prometheus.Histogram
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ManifestsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_processed_total",
			Help:      "The total number of processed manifest emails",
		}),
		ServicesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_extracted_total",
			Help:      "The total number of services extracted from manifests",
		}),
		OrdersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "The total number of order operations by action",
		}, []string{"action"}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "manifest_processing_time_seconds",
			Help:      "Time taken to process manifest emails",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
