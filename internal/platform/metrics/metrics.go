package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the enrichment pipeline. Skipped
// records are observable only here and in logs; the pipeline has no
// synchronous caller to report them to.
type Metrics struct {
	BatchesConsumed    *prometheus.CounterVec
	RecordsTransformed *prometheus.CounterVec
	RecordsSkipped     *prometheus.CounterVec
	DocumentsPublished *prometheus.CounterVec
	PublishFailures    *prometheus.CounterVec
	TransformDuration  *prometheus.HistogramVec
}

// New creates and registers all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		BatchesConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_batches_consumed_total",
			Help: "Event batches consumed per topic",
		}, []string{"topic"}),
		RecordsTransformed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_records_transformed_total",
			Help: "Records successfully transformed per event kind",
		}, []string{"kind"}),
		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_records_skipped_total",
			Help: "Records skipped per event kind and failure reason",
		}, []string{"kind", "reason"}),
		DocumentsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_documents_published_total",
			Help: "Index documents handed to the bus per topic",
		}, []string{"topic"}),
		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_publish_failures_total",
			Help: "Failed publish batches per topic",
		}, []string{"topic"}),
		TransformDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enricher_transform_duration_seconds",
			Help:    "Per-record transform latency per event kind",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
}
