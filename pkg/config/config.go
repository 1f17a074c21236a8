// Package config loads node configuration from the environment and from
// optional YAML deployment profiles.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds edge-node configuration.
type Config struct {
	NodeName     string
	LogLevel     string
	EdgeURL      string // websocket URL of the edge server; empty = loopback
	JournalPath  string // sqlite path for the event journal; empty = memory only
	RedisAddr    string // shared unsigned-tag store; empty = in-process
	OTLPEndpoint string
	TickInterval time.Duration
	SignerCount  int
}

// Load loads configuration from environment variables.
func Load() *Config {
	name := os.Getenv("EDGE_NODE_NAME")
	if name == "" {
		name = "edge-node"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	tick := 2 * time.Second
	if raw := os.Getenv("EDGE_TICK_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			tick = d
		}
	}

	signers := 3
	if raw := os.Getenv("EDGE_SIGNER_COUNT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			signers = n
		}
	}

	return &Config{
		NodeName:     name,
		LogLevel:     logLevel,
		EdgeURL:      os.Getenv("EDGE_SERVER_URL"),
		JournalPath:  os.Getenv("EDGE_JOURNAL_PATH"),
		RedisAddr:    os.Getenv("EDGE_REDIS_ADDR"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TickInterval: tick,
		SignerCount:  signers,
	}
}
