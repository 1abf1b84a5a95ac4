// Package metrics provides Prometheus metrics for the parcel ingester.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all ingestion metrics.
type Metrics struct {
	// Counters
	RawRecordsIngested *prometheus.CounterVec
	DuplicatesSkipped  *prometheus.CounterVec
	RecordsRejected    *prometheus.CounterVec
	MergeOutcomes      *prometheus.CounterVec
	CountiesUnresolved prometheus.Counter

	// Gauges
	CurrentBatchSize prometheus.Gauge
	FilesRemaining   prometheus.Gauge

	// Histograms
	BatchMergeDuration prometheus.Histogram
	FileIngestDuration prometheus.Histogram
	NormalizeDuration  prometheus.Histogram

	// Internal
	registry *prometheus.Registry
	enabled  bool
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // e.g., ":9090"
}

// ApplyDefaults sets default values for metrics config.
func (c *Config) ApplyDefaults() {
	if c.Address == "" {
		c.Address = ":9090"
	}
}

// New creates a new metrics instance.
func New(cfg Config) *Metrics {
	cfg.ApplyDefaults()

	m := &Metrics{
		enabled:  cfg.Enabled,
		registry: prometheus.NewRegistry(),
	}

	if !cfg.Enabled {
		return m
	}

	// Counters
	m.RawRecordsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcels",
			Name:      "raw_records_ingested_total",
			Help:      "Total raw records stored per source",
		},
		[]string{"source"},
	)

	m.DuplicatesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcels",
			Name:      "duplicates_skipped_total",
			Help:      "Raw records skipped because an identical row was already stored",
		},
		[]string{"source"},
	)

	m.RecordsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcels",
			Name:      "records_rejected_total",
			Help:      "Records rejected during normalization",
		},
		[]string{"source"},
	)

	m.MergeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcels",
			Name:      "merge_outcomes_total",
			Help:      "Merge outcomes by type",
		},
		[]string{"outcome"}, // "created", "updated", "unchanged", "failed"
	)

	m.CountiesUnresolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parcels",
			Name:      "counties_unresolved_total",
			Help:      "Parcels merged without a resolvable county reference",
		},
	)

	// Gauges
	m.CurrentBatchSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parcels",
			Name:      "current_batch_size",
			Help:      "Number of candidates in the batch being merged",
		},
	)

	m.FilesRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parcels",
			Name:      "files_remaining",
			Help:      "Source files not yet ingested in this run",
		},
	)

	// Histograms
	m.BatchMergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "parcels",
			Name:      "batch_merge_duration_seconds",
			Help:      "Time to merge one batch of candidates",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
	)

	m.FileIngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "parcels",
			Name:      "file_ingest_duration_seconds",
			Help:      "Time to ingest one source file end to end",
			Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)

	m.NormalizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "parcels",
			Name:      "normalize_batch_duration_seconds",
			Help:      "Time to normalize one batch of raw records",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// Register all metrics
	m.registry.MustRegister(
		m.RawRecordsIngested,
		m.DuplicatesSkipped,
		m.RecordsRejected,
		m.MergeOutcomes,
		m.CountiesUnresolved,
		m.CurrentBatchSize,
		m.FilesRemaining,
		m.BatchMergeDuration,
		m.FileIngestDuration,
		m.NormalizeDuration,
	)

	// Also register Go runtime metrics
	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler for metrics.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IsEnabled returns true if metrics are enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled
}

// Helper methods for common operations

// RecordRawIngested adds stored raw records for a source.
func (m *Metrics) RecordRawIngested(source string, count int64) {
	if m.enabled && m.RawRecordsIngested != nil {
		m.RawRecordsIngested.WithLabelValues(source).Add(float64(count))
	}
}

// RecordDuplicatesSkipped adds skipped duplicates for a source.
func (m *Metrics) RecordDuplicatesSkipped(source string, count int64) {
	if m.enabled && m.DuplicatesSkipped != nil {
		m.DuplicatesSkipped.WithLabelValues(source).Add(float64(count))
	}
}

// RecordRejected increments the rejected-record counter for a source.
func (m *Metrics) RecordRejected(source string) {
	if m.enabled && m.RecordsRejected != nil {
		m.RecordsRejected.WithLabelValues(source).Inc()
	}
}

// RecordMergeOutcome adds merge outcomes by type.
func (m *Metrics) RecordMergeOutcome(outcome string, count int) {
	if m.enabled && m.MergeOutcomes != nil {
		m.MergeOutcomes.WithLabelValues(outcome).Add(float64(count))
	}
}

// RecordUnresolved adds parcels merged without a county reference.
func (m *Metrics) RecordUnresolved(count int) {
	if m.enabled && m.CountiesUnresolved != nil {
		m.CountiesUnresolved.Add(float64(count))
	}
}

// SetCurrentBatchSize sets the in-flight batch size gauge.
func (m *Metrics) SetCurrentBatchSize(size int) {
	if m.enabled && m.CurrentBatchSize != nil {
		m.CurrentBatchSize.Set(float64(size))
	}
}

// SetFilesRemaining sets the remaining-files gauge.
func (m *Metrics) SetFilesRemaining(count int) {
	if m.enabled && m.FilesRemaining != nil {
		m.FilesRemaining.Set(float64(count))
	}
}

// RecordBatchMergeDuration records how long one batch merge took.
func (m *Metrics) RecordBatchMergeDuration(duration time.Duration) {
	if m.enabled && m.BatchMergeDuration != nil {
		m.BatchMergeDuration.Observe(duration.Seconds())
	}
}

// RecordFileIngestDuration records end-to-end ingestion time for a file.
func (m *Metrics) RecordFileIngestDuration(duration time.Duration) {
	if m.enabled && m.FileIngestDuration != nil {
		m.FileIngestDuration.Observe(duration.Seconds())
	}
}

// RecordNormalizeDuration records how long one batch normalization took.
func (m *Metrics) RecordNormalizeDuration(duration time.Duration) {
	if m.enabled && m.NormalizeDuration != nil {
		m.NormalizeDuration.Observe(duration.Seconds())
	}
}
