package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RowsProcessed      *prometheus.CounterVec
	APIErrors          prometheus.Counter
	RequestSeconds     prometheus.Histogram
	ContinuousFailures prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_rows_processed_total",
			Help: "Total number of processed input rows, by outcome status.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_api_errors_total",
			Help: "Total number of non-success outcomes received from the geocoding API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "geocoding_request_duration_seconds",
			Help:    "Duration of requests to the geocoding API.",
			Buckets: prometheus.DefBuckets,
		}),
		ContinuousFailures: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_continuous_failures",
			Help: "Current run of consecutive non-success outcomes since the last match.",
		}),
	}
}
