// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	ServiceName string
	Env         string
	Port        string

	StoreBackend            string
	DatabaseURL             string
	DatabaseMaxConns        int32
	DatabaseMinConns        int32
	DatabaseConnectAttempts int
	DatabaseAutoMigrate     bool

	OrderPlacementTimeout time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	ShutdownTimeout       time.Duration

	OTLPEndpoint string
	OTelDisabled bool
}

// Load reads the environment. Unset variables take their defaults; malformed ones are errors.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:  getEnv("SERVICE_NAME", "orders-service"),
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", BackendPostgres),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}

	if cfg.StoreBackend != BackendPostgres && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("STORE_BACKEND: unsupported backend %q", cfg.StoreBackend)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = (&url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(getEnv("DATABASE_USER", "root"), getEnv("DATABASE_PASSWORD", "pass")),
			Host:     getEnv("DATABASE_HOST", "localhost") + ":" + getEnv("DATABASE_PORT", "5432"),
			Path:     "/" + getEnv("DATABASE_NAME", "orders_db"),
			RawQuery: "sslmode=disable",
		}).String()
	}

	var err error
	if cfg.DatabaseMaxConns, err = getInt32("DATABASE_MAX_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DatabaseMinConns, err = getInt32("DATABASE_MIN_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.DatabaseMinConns > cfg.DatabaseMaxConns {
		return nil, fmt.Errorf("DATABASE_MIN_CONNS (%d) exceeds DATABASE_MAX_CONNS (%d)", cfg.DatabaseMinConns, cfg.DatabaseMaxConns)
	}
	if cfg.DatabaseConnectAttempts, err = getInt("DATABASE_CONNECT_ATTEMPTS", 30); err != nil {
		return nil, err
	}
	if cfg.DatabaseAutoMigrate, err = getBool("DATABASE_AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.OTelDisabled, err = getBool("OTEL_SDK_DISABLED", false); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"ORDER_PLACEMENT_TIMEOUT", 10 * time.Second, &cfg.OrderPlacementTimeout},
		{"HTTP_READ_TIMEOUT", 30 * time.Second, &cfg.HTTPReadTimeout},
		{"HTTP_WRITE_TIMEOUT", 30 * time.Second, &cfg.HTTPWriteTimeout},
		{"SHUTDOWN_TIMEOUT", 15 * time.Second, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, raw)
	}
	return n, nil
}

func getInt32(key string, defaultValue int32) (int32, error) {
	n, err := getInt(key, int(defaultValue))
	if err != nil {
		return 0, err
	}
	if n > int(^uint32(0)>>1) {
		return 0, fmt.Errorf("%s: %d is out of range", key, n)
	}
	return int32(n), nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: expected a boolean, got %q", key, raw)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: expected a positive duration, got %q", key, raw)
	}
	return d, nil
}
