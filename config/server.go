package config

import (
	"os"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServerConfig builds the HTTP server settings from the environment,
// falling back to defaults.
func NewServerConfig() ServerConfig {
	cfg := ServerConfig{
		ListenAddr:      defaultListenAddr,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		IdleTimeout:     defaultIdleTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if timeout := durationFromEnv("READ_TIMEOUT"); timeout > 0 {
		cfg.ReadTimeout = timeout
	}

	if timeout := durationFromEnv("WRITE_TIMEOUT"); timeout > 0 {
		cfg.WriteTimeout = timeout
	}

	if timeout := durationFromEnv("IDLE_TIMEOUT"); timeout > 0 {
		cfg.IdleTimeout = timeout
	}

	if timeout := durationFromEnv("SHUTDOWN_TIMEOUT"); timeout > 0 {
		cfg.ShutdownTimeout = timeout
	}

	return cfg
}

func durationFromEnv(key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}

	return parsed
}
