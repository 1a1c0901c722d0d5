package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the scrape worker

var (
	// Fetch metrics
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_fetches_total",
			Help: "Total number of upstream fetch attempts",
		},
		[]string{"provider", "endpoint", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_fetch_duration_seconds",
			Help:    "Duration of upstream fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	// Reconciler metrics
	RecordsMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_records_merged_total",
			Help: "Master table merge outcomes by table",
		},
		[]string{"table", "outcome"},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_records_dropped_total",
			Help: "Records dropped for missing their unique key",
		},
		[]string{"table"},
	)

	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ncaam_master_table_rows",
			Help: "Current row count per master table",
		},
		[]string{"table"},
	)

	// Scrape progress metrics
	GamesScraped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_games_scraped_total",
			Help: "Games whose detail files were written",
		},
	)

	SectionsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_detail_sections_skipped_total",
			Help: "Detail sections skipped by section name",
		},
		[]string{"section"},
	)

	DatesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_dates_completed_total",
			Help: "Calendar dates marked complete",
		},
	)

	// Storage metrics
	TableFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_table_flushes_total",
			Help: "Master table persistence attempts",
		},
		[]string{"table", "status"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_last_successful_run_timestamp",
			Help: "Timestamp of the last completed scrape pass",
		},
	)
)

// RecordFetch records one upstream fetch attempt.
func RecordFetch(provider, endpoint, status string, duration float64) {
	FetchesTotal.WithLabelValues(provider, endpoint, status).Inc()
	FetchDuration.WithLabelValues(provider, endpoint).Observe(duration)
}

// RecordMerge records one batch merge against a master table.
func RecordMerge(table string, inserted, replaced, kept, dropped int) {
	RecordsMerged.WithLabelValues(table, "inserted").Add(float64(inserted))
	RecordsMerged.WithLabelValues(table, "replaced").Add(float64(replaced))
	RecordsMerged.WithLabelValues(table, "kept").Add(float64(kept))
	if dropped > 0 {
		RecordsDropped.WithLabelValues(table).Add(float64(dropped))
	}
}

// RecordFlush records a master table persistence attempt.
func RecordFlush(table string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TableFlushes.WithLabelValues(table, status).Inc()
}

// RecordSectionSkipped records a detail section that produced no rows.
func RecordSectionSkipped(section string) {
	SectionsSkipped.WithLabelValues(section).Inc()
}

// RecordRunComplete marks the end of a successful scrape pass.
func RecordRunComplete() {
	LastSuccessfulRun.SetToCurrentTime()
}
