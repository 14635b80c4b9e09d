package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	analysisRuns    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	workerRuns      *prometheus.CounterVec

	initialized bool
)

// Init registers all collectors. Call once at startup before any Record*.
func Init() {
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hermes",
		Name:      "stage_duration_seconds",
		Help:      "Duration of analysis pipeline stages",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	stageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hermes",
		Name:      "stage_errors_total",
		Help:      "Analysis stage failures",
	}, []string{"stage"})

	analysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hermes",
		Name:      "analysis_runs_total",
		Help:      "Completed analysis runs",
	}, []string{"currency", "outcome"})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hermes",
		Name:      "db_query_duration_seconds",
		Help:      "Duration of database queries",
		Buckets:   prometheus.DefBuckets,
	}, []string{"database", "operation"})

	workerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hermes",
		Name:      "worker_runs_total",
		Help:      "Background worker iterations",
	}, []string{"worker", "outcome"})

	initialized = true
}

// Handler exposes the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStage records one pipeline stage execution
func RecordStage(stage string, duration time.Duration, err error) {
	if !initialized {
		return
	}
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		stageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordAnalysisRun records a finished analysis run
func RecordAnalysisRun(currency string, failed bool) {
	if !initialized {
		return
	}
	outcome := "success"
	if failed {
		outcome = "partial"
	}
	analysisRuns.WithLabelValues(currency, outcome).Inc()
}

// RecordDBQuery records one database query
func RecordDBQuery(database, operation string, duration time.Duration) {
	if !initialized {
		return
	}
	dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordWorkerRun records one background worker iteration
func RecordWorkerRun(worker string, err error) {
	if !initialized {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	workerRuns.WithLabelValues(worker, outcome).Inc()
}
