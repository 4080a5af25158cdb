package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by Load
const (
	EnvBasePath = "SIMPLEDB_BASE_PATH"
	EnvSeqURL   = "SIMPLEDB_SEQ_URL"
	EnvLogLevel = "SIMPLEDB_LOG_LEVEL"
	EnvPort     = "SIMPLEDB_PORT"
)

const (
	DefaultBasePath = "databases"
	DefaultPort     = 4444
)

// Config holds process-level settings. The storage core only ever sees BasePath.
type Config struct {
	BasePath string     // directory holding one sub-directory per database
	SeqURL   string     // Seq ingestion endpoint; empty disables log shipping
	LogLevel slog.Level // minimum level for every log handler
	Port     int        // TCP port for server mode
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		BasePath: DefaultBasePath,
		LogLevel: slog.LevelInfo,
		Port:     DefaultPort,
	}
}

// Load starts from Default and applies any environment overrides
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup is Load with an injectable environment
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvBasePath); ok && strings.TrimSpace(v) != "" {
		cfg.BasePath = v
	}

	if v, ok := lookup(EnvSeqURL); ok {
		cfg.SeqURL = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
	}

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Port = port
	}

	return cfg, nil
}
