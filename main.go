package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/drewmad/claimguardian-platform-sub005/logging"
	"github.com/drewmad/claimguardian-platform-sub005/merge"
	"github.com/drewmad/claimguardian-platform-sub005/metrics"
)

const serviceVersion = "1.2.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to config file")
	reenrich := flag.Bool("reenrich", false, "Re-resolve county references for parcels that merged without one, then exit")
	flag.Parse()

	log.Println("🔧 Loading configuration from", *configPath)

	// Load configuration
	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.NewComponentLogger(config.Service.Name, serviceVersion)

	log.Printf("📋 Service: %s", config.Service.Name)
	log.Printf("📋 Batch size: %d records", config.Performance.BatchSize)

	// Connect to PostgreSQL
	log.Println("🔗 Connecting to PostgreSQL...")
	db, err := sql.Open("postgres", config.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	if err := initSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("🛑 Shutdown signal received...")
		cancel()
	}()

	engine := merge.NewEngine(db, config.Performance.MaxRetries)

	if *reenrich {
		n, err := engine.ReenrichUnresolved(ctx)
		if err != nil {
			log.Fatalf("Re-enrichment failed: %v", err)
		}
		log.Printf("✅ Re-enriched %d parcels", n)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("No source files given; usage: parcel-ingester [-config config.yaml] file.csv ...")
	}

	// Initialize components
	m := metrics.New(config.Metrics)
	rawStore := NewRawStore(db)
	checkpoint := NewCheckpointManager(db)
	ingester := NewIngester(config, rawStore, engine, checkpoint, logger, m)

	logger.LogStartup(logging.StartupConfig{
		DatabaseHost: config.Database.Host,
		DatabaseName: config.Database.Database,
		BatchSize:    config.Performance.BatchSize,
		HealthPort:   atoiOrZero(config.Service.HealthPort),
		SourceFiles:  len(files),
	})

	// Start health server in goroutine
	healthServer := NewHealthServer(ingester, config, m)
	go func() {
		if err := healthServer.Start(config.Service.HealthPort); err != nil {
			log.Fatalf("Health server failed: %v", err)
		}
	}()

	// Ingest each file in order
	m.SetFilesRemaining(len(files))
	for i, path := range files {
		if err := ingester.IngestFile(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("🛑 Ingestion cancelled during %s; checkpoint saved for resume", path)
				break
			}
			log.Fatalf("Failed to ingest %s: %v", path, err)
		}
		m.SetFilesRemaining(len(files) - i - 1)
	}

	stats := ingester.GetStats()
	log.Printf("📊 Run complete: %d files, %d raw stored, %d duplicates, %d rejected, %d created, %d updated, %d unchanged, %d failed",
		stats.FilesIngested, stats.RawRecordsStored, stats.DuplicatesSkipped, stats.RecordsRejected,
		stats.ParcelsCreated, stats.ParcelsUpdated, stats.ParcelsUnchanged, stats.ParcelsFailed)

	log.Println("👋 Shutdown complete")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
