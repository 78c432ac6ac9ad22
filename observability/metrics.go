// Package observability provides Prometheus metrics for monitoring tracking runs.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Run metrics
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	WarningsTotal *prometheus.CounterVec

	// Provider metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	PricePoints   *prometheus.CounterVec

	// Store metrics
	StoreWrites *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec

	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered in reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wealth"
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of runs by command and status",
		}, []string{"command", "status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		WarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Total number of non fatal data warnings by kind",
		}, []string{"kind"}),
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fetch_total",
			Help:      "Total number of price series fetches by source and status",
		}, []string{"source", "status"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of price series fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		PricePoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "price_points_total",
			Help:      "Total number of price points fetched",
		}, []string{"source"}),
		StoreWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total number of rows written by store and table",
		}, []string{"store", "table"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of store errors",
		}, []string{"store", "operation"}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordRun records the outcome of a command.
func RecordRun(command string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	} else {
		DefaultMetrics.LastSuccessfulRun.SetToCurrentTime()
	}
	DefaultMetrics.RunsTotal.WithLabelValues(command, status).Inc()
}

// RecordStage records the duration of a pipeline stage.
func RecordStage(stage string, seconds float64) {
	DefaultMetrics.StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordWarnings adds n warnings of a kind.
func RecordWarnings(kind string, n int) {
	if n > 0 {
		DefaultMetrics.WarningsTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordFetch records a price series fetch.
func RecordFetch(source string, points int, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	DefaultMetrics.FetchTotal.WithLabelValues(source, status).Inc()
	DefaultMetrics.FetchDuration.WithLabelValues(source).Observe(seconds)
	DefaultMetrics.PricePoints.WithLabelValues(source).Add(float64(points))
}

// RecordStoreWrite records rows written to a store table, or the error that prevented it.
func RecordStoreWrite(store, table string, rows int, err error) {
	if err != nil {
		DefaultMetrics.StoreErrors.WithLabelValues(store, "write").Inc()
		return
	}
	DefaultMetrics.StoreWrites.WithLabelValues(store, table).Add(float64(rows))
}
