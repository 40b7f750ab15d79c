package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	reviewSubsystem = "review"

	// Export metrics
	exportsTotal       = "exports_total"
	exportBytesTotal   = "export_bytes_total"
	exportEntriesTotal = "export_entries_total"
	labelUpdatesTotal  = "label_updates_total"
	sceneCacheRequests = "scene_cache_total"

	// Labels
	exportStateLabel = "state"
	labelFieldLabel  = "field"
	cacheResultLabel = "result"
)

// Export states
const (
	ExportSuccess  = "success"
	ExportNotFound = "not_found"
	ExportFailed   = "failed"
	ExportAborted  = "aborted"
)

/**
* Metrics definition
**/
var exportsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: reviewSubsystem,
		Name:      exportsTotal,
		Help:      "number of archive exports partitioned by outcome",
	},
	[]string{exportStateLabel},
)

var exportBytesTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: reviewSubsystem,
		Name:      exportBytesTotal,
		Help:      "uncompressed bytes appended to export archives",
	},
)

var exportEntriesTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: reviewSubsystem,
		Name:      exportEntriesTotal,
		Help:      "files appended to export archives",
	},
)

var labelUpdatesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: reviewSubsystem,
		Name:      labelUpdatesTotal,
		Help:      "number of label changes partitioned by label",
	},
	[]string{labelFieldLabel},
)

var sceneCacheRequestsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: reviewSubsystem,
		Name:      sceneCacheRequests,
		Help:      "scene lookups partitioned by cache hit or miss",
	},
	[]string{cacheResultLabel},
)

func IncreaseExportsTotalMetric(state string) {
	exportsTotalMetric.With(prometheus.Labels{exportStateLabel: state}).Inc()
}

func AddExportedEntries(entries int, bytes int64) {
	exportEntriesTotalMetric.Add(float64(entries))
	exportBytesTotalMetric.Add(float64(bytes))
}

func IncreaseLabelUpdatesMetric(field string) {
	labelUpdatesTotalMetric.With(prometheus.Labels{labelFieldLabel: field}).Inc()
}

func IncreaseSceneCacheMetric(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	sceneCacheRequestsMetric.With(prometheus.Labels{cacheResultLabel: result}).Inc()
}

// PrometheusMetricsHandler exposes the default registry.
type PrometheusMetricsHandler struct{}

func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	return &PrometheusMetricsHandler{}
}

func (h *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(exportsTotalMetric)
	prometheus.MustRegister(exportBytesTotalMetric)
	prometheus.MustRegister(exportEntriesTotalMetric)
	prometheus.MustRegister(labelUpdatesTotalMetric)
	prometheus.MustRegister(sceneCacheRequestsMetric)
}
