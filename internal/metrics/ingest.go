package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	IngestResourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notedex",
			Name:      "ingest_resources_total",
			Help:      "Resources processed by the ingestion pipeline",
		},
		[]string{"source", "status"}, // source: github/colab; status: ok/fetch_error/extract_error/store_error
	)

	IngestFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notedex",
			Name:      "ingest_fetch_duration_seconds",
			Help:      "Notebook fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestResourcesTotal)
	prometheus.MustRegister(IngestFetchDuration)
	ingestMetricsRegistered = true
}
