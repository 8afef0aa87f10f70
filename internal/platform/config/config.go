package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	DeviceBaseURL string
	DeviceTimeout time.Duration

	JournalPath  string
	PollInterval time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quorum"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	deviceURL := strings.TrimSpace(os.Getenv("DEVICE_BASE_URL"))
	if deviceURL == "" {
		deviceURL = "http://localhost:8030"
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		DeviceBaseURL: deviceURL,
		DeviceTimeout: envDuration("DEVICE_TIMEOUT", 10*time.Second),
		JournalPath:   strings.TrimSpace(os.Getenv("RESULT_JOURNAL_PATH")),
		PollInterval:  envDuration("WORKER_POLL_INTERVAL", 2*time.Second),
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
