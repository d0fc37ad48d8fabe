package config

import (
	"os"
	"time"
)

// NewForTest returns a config suitable for unit tests, without consulting the
// environment switch or the settings file.
func NewForTest() *Config {
	hostname, _ := os.Hostname()

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Environment:               "test",
		Hostname:                  hostname,
		Settings:                  defaultSettings(),
	}
	loadTestConfig(cfg)

	return cfg
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	// Port 0 binds an ephemeral port so parallel test runs don't collide.
	cfg.ServerPort = 0
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
}
