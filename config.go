package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drewmad/claimguardian-platform-sub005/metrics"
)

// Config represents the service configuration
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Database    DatabaseConfig    `yaml:"database"`
	Metrics     metrics.Config    `yaml:"metrics"`
	Performance PerformanceConfig `yaml:"performance"`
}

// ServiceConfig holds service-level settings
type ServiceConfig struct {
	Name       string `yaml:"name"`
	HealthPort string `yaml:"health_port"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// PerformanceConfig holds performance tuning settings
type PerformanceConfig struct {
	BatchSize  int `yaml:"batch_size"`
	MaxRetries int `yaml:"max_retries"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "parcel-ingester"
	}
	if c.Service.HealthPort == "" {
		c.Service.HealthPort = "8088"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Performance.BatchSize == 0 {
		c.Performance.BatchSize = 1000
	}
	if c.Performance.MaxRetries == 0 {
		c.Performance.MaxRetries = 3
	}
	c.Metrics.ApplyDefaults()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Performance.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}

	if c.Performance.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}

	return nil
}

// ConnectionString builds a PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Database, d.User, d.Password, d.SSLMode,
	)
}
