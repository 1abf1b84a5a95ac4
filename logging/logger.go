package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentLogger provides structured logging for ingestion components
type ComponentLogger struct {
	logger zerolog.Logger
}

// NewComponentLogger creates a component-specific logger with consistent context
func NewComponentLogger(componentName, version string) *ComponentLogger {
	// Configure zerolog globally
	zerolog.TimeFieldFormat = time.RFC3339

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Console output for development
	if os.Getenv("ENVIRONMENT") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		})
	}

	// Create component-specific logger
	logger := log.With().
		Str("component", componentName).
		Str("version", version).
		Logger()

	return &ComponentLogger{
		logger: logger,
	}
}

func (cl *ComponentLogger) Info() *zerolog.Event {
	return cl.logger.Info()
}

func (cl *ComponentLogger) Error() *zerolog.Event {
	return cl.logger.Error()
}

func (cl *ComponentLogger) Warn() *zerolog.Event {
	return cl.logger.Warn()
}

func (cl *ComponentLogger) Debug() *zerolog.Event {
	return cl.logger.Debug()
}

// LogStartup logs service startup with structured fields
func (cl *ComponentLogger) LogStartup(config StartupConfig) {
	cl.Info().
		Str("database_host", config.DatabaseHost).
		Str("database_name", config.DatabaseName).
		Int("batch_size", config.BatchSize).
		Int("health_port", config.HealthPort).
		Int("source_files", config.SourceFiles).
		Msg("Starting parcel ingestion service")
}

// LogBatchMerged logs the outcome of one merged batch
func (cl *ComponentLogger) LogBatchMerged(batchID string, created, updated, unchanged, failed int, duration time.Duration) {
	cl.Info().
		Str("batch_id", batchID).
		Int("created", created).
		Int("updated", updated).
		Int("unchanged", unchanged).
		Int("failed", failed).
		Dur("merge_time", duration).
		Msg("Batch merge completed")
}

// LogRecordRejected logs a record that failed normalization
func (cl *ComponentLogger) LogRecordRejected(source, sourceID string, err error) {
	cl.Warn().
		Str("source", source).
		Str("source_id", sourceID).
		Err(err).
		Msg("Record rejected during normalization")
}

// LogFilePerformance logs per-file throughput after ingestion
func (cl *ComponentLogger) LogFilePerformance(metrics FileMetrics) {
	cl.Info().
		Str("operation", "file_ingested").
		Str("file", metrics.File).
		Int64("total_records", metrics.TotalRecords).
		Int64("duplicates_skipped", metrics.DuplicatesSkipped).
		Float64("records_per_second", metrics.RecordsPerSecond).
		Dur("elapsed", metrics.Elapsed).
		Msg("File ingestion completed")
}

// StartupConfig represents service startup configuration
type StartupConfig struct {
	DatabaseHost string
	DatabaseName string
	BatchSize    int
	HealthPort   int
	SourceFiles  int
}

// FileMetrics represents per-file throughput measurement data
type FileMetrics struct {
	File              string
	TotalRecords      int64
	DuplicatesSkipped int64
	RecordsPerSecond  float64
	Elapsed           time.Duration
}
