// Package metrics exposes prometheus collectors for ingestion and fact
// builds. They are registered with the default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "greentrack"

const (
	MetricIngestedRows      = "ingested_rows_total"
	MetricDroppedRows       = "dropped_rows_total"
	MetricFactRows          = "fact_rows"
	MetricFactBuildDuration = "fact_build_seconds"
)

// Reasons a source row can be dropped.
const (
	ReasonUnknownTransportType = "unknown_transport_type"
	ReasonUnknownParent        = "unknown_parent"
	ReasonUnknownReference     = "unknown_reference"
	ReasonDuplicate            = "duplicate"
	ReasonInvalid              = "invalid"
)

var CounterIngestedRows = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricIngestedRows,
		Help:      "Rows inserted by ingestion, per table.",
	},
	[]string{"table"},
)

var CounterDroppedRows = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricDroppedRows,
		Help:      "Source rows skipped during ingestion, per table and reason.",
	},
	[]string{"table", "reason"},
)

var GaugeFactRows = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      MetricFactRows,
		Help:      "Rows written by the last successful fact build.",
	},
)

var HistogramFactBuild = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      MetricFactBuildDuration,
		Help:      "Duration of fact table rebuilds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	},
)

func init() {
	prometheus.MustRegister(CounterIngestedRows)
	prometheus.MustRegister(CounterDroppedRows)
	prometheus.MustRegister(GaugeFactRows)
	prometheus.MustRegister(HistogramFactBuild)
}
