package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
service:
  name: parcel-ingester
  health_port: "8088"
database:
  host: db.internal
  port: 5433
  database: claimguardian
  user: parcels
  password: secret
  sslmode: require
performance:
  batch_size: 500
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if config.Database.Host != "db.internal" {
		t.Errorf("host = %q, want db.internal", config.Database.Host)
	}
	if config.Performance.BatchSize != 500 {
		t.Errorf("batch_size = %d, want 500", config.Performance.BatchSize)
	}

	want := "host=db.internal port=5433 dbname=claimguardian user=parcels password=secret sslmode=require"
	if got := config.Database.ConnectionString(); got != want {
		t.Errorf("ConnectionString = %q, want %q", got, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
database:
  host: localhost
  database: claimguardian
  user: parcels
  password: parcels
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if config.Database.Port != 5432 {
		t.Errorf("port = %d, want 5432", config.Database.Port)
	}
	if config.Database.SSLMode != "disable" {
		t.Errorf("sslmode = %q, want disable", config.Database.SSLMode)
	}
	if config.Performance.BatchSize != 1000 {
		t.Errorf("batch_size = %d, want 1000", config.Performance.BatchSize)
	}
	if config.Service.Name != "parcel-ingester" {
		t.Errorf("service name = %q, want parcel-ingester", config.Service.Name)
	}
}

func TestValidateRejectsMissingHost(t *testing.T) {
	config := &Config{}
	config.applyDefaults()
	if err := config.Validate(); err == nil {
		t.Error("expected error for missing database host")
	}
}
