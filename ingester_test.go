package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drewmad/claimguardian-platform-sub005/logging"
	"github.com/drewmad/claimguardian-platform-sub005/metrics"
)

// A cancelled run stops cleanly: IngestFile surfaces the cancellation
// itself so the caller can distinguish it from an ingestion failure.
func TestIngestFileCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nal.csv")
	data := "PARCEL_ID,CO_NO\n00123,15\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	config := &Config{}
	config.applyDefaults()
	ing := NewIngester(config, nil, nil, nil,
		logging.NewComponentLogger("parcel-ingester-test", "test"),
		metrics.New(metrics.Config{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ing.IngestFile(ctx, path)
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
