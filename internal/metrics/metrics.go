// Package metrics declares TRAC's Prometheus metrics, grounded on warren's
// pkg/metrics/metrics.go (package-level prometheus.NewX vars registered in
// an init(), a Timer helper for latency histograms, Handler() for the
// /metrics HTTP endpoint) — renamed onto TRAC's own domain: datasets/files
// read and written, codec decode/encode latency, tenant and RPC counts,
// rather than warren's node/container/raft vocabulary.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPCRequestsTotal counts gRPC calls by method and resulting status code.
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trac_rpc_requests_total",
			Help: "Total number of gRPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	// RPCRequestDuration tracks gRPC call latency by method.
	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trac_rpc_request_duration_seconds",
			Help:    "gRPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// DatasetsWrittenTotal counts successful createDataset/updateDataset
	// calls by tenant.
	DatasetsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trac_datasets_written_total",
			Help: "Total number of dataset write operations by tenant",
		},
		[]string{"tenant"},
	)

	// FilesWrittenTotal counts successful createFile/updateFile calls by
	// tenant.
	FilesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trac_files_written_total",
			Help: "Total number of file write operations by tenant",
		},
		[]string{"tenant"},
	)

	// BytesStreamedTotal sums the bytes moved through the streaming pipeline
	// by direction ("read"/"write").
	BytesStreamedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trac_bytes_streamed_total",
			Help: "Total bytes streamed through the data pipeline by direction",
		},
		[]string{"direction"},
	)

	// CodecDuration tracks per-format decode/encode latency.
	CodecDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trac_codec_duration_seconds",
			Help:    "Codec decode/encode duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format", "operation"},
	)

	// TenantsTotal is the current number of provisioned tenants.
	TenantsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trac_tenants_total",
			Help: "Total number of provisioned tenants",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RPCRequestsTotal,
		RPCRequestDuration,
		DatasetsWrittenTotal,
		FilesWrittenTotal,
		BytesStreamedTotal,
		CodecDuration,
		TenantsTotal,
	)
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times an in-flight operation for later histogram observation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time against histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Observer) {
	histogram.Observe(time.Since(t.start).Seconds())
}
