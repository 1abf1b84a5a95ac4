package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/drewmad/claimguardian-platform-sub005/metrics"
)

// HealthServer manages the HTTP health and metrics endpoints
type HealthServer struct {
	ingester  *Ingester
	config    *Config
	metrics   *metrics.Metrics
	startTime time.Time
}

// NewHealthServer creates a new health server
func NewHealthServer(ingester *Ingester, config *Config, m *metrics.Metrics) *HealthServer {
	return &HealthServer{
		ingester:  ingester,
		config:    config,
		metrics:   m,
		startTime: time.Now(),
	}
}

// Start starts the health and metrics HTTP server
func (h *HealthServer) Start(port string) error {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", h.handleHealth)

	// Ready endpoint (for k8s readiness probes)
	mux.HandleFunc("/ready", h.handleReady)

	// Live endpoint (for k8s liveness probes)
	mux.HandleFunc("/live", h.handleLive)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", h.metrics.Handler())

	addr := ":" + port
	log.Printf("🏥 Health server listening on %s", addr)

	return http.ListenAndServe(addr, mux)
}

// handleHealth returns detailed health information
func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.ingester.GetStats()

	health := map[string]interface{}{
		"status":         "healthy",
		"service":        h.config.Service.Name,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"stats":          stats,
		"config": map[string]interface{}{
			"batch_size":  h.config.Performance.BatchSize,
			"max_retries": h.config.Performance.MaxRetries,
			"database":    h.config.Database.Database,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleReady returns readiness status (for k8s)
func (h *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ready")
}

// handleLive returns liveness status (for k8s)
func (h *HealthServer) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "live")
}
