package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // AUDIT_TIMEZONE must resolve on hosts without a zoneinfo database

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxWorkers = 256

// Config holds all auditor settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	Workers  int
	Timezone *time.Location

	// MetricsTextfile, when set, receives the run's metrics in Prometheus
	// text format.
	MetricsTextfile string

	// Kafka publishing of violations.
	KafkaBrokers       []string
	KafkaTopic         string
	KafkaEnabled       bool
	KafkaTimeout       time.Duration
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("AUDIT_TIMEZONE", "America/New_York")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_TIMEZONE %q: %w", tzName, err)
	}

	kafkaTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("KAFKA_TIMEOUT", "10s"))
	if err != nil || kafkaTimeout <= 0 {
		return nil, errors.New("invalid KAFKA_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		Workers:            workers,
		Timezone:           tz,
		MetricsTextfile:    os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_VIOLATIONS_TOPIC", "takeoff-violations"),
		KafkaEnabled:       kafkaEnabled,
		KafkaTimeout:       kafkaTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_VIOLATIONS_TOPIC is required")
	}

	return cfg, nil
}

func parseWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("AUDIT_WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxWorkers {
		return 0, fmt.Errorf("invalid AUDIT_WORKERS %q: want 1..%d", s, maxWorkers)
	}
	return n, nil
}
