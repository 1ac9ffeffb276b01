// Package config handles configuration for an embedded graphdb instance via
// environment variables, following the same GRAPHDB_-prefixed
// environment-variable convention as the teacher's Neo4j-compatible
// config package, reduced to what this core's façade and CLI actually need:
// durable-store path, WAL sync mode, and CLI defaults rather than a full
// server/auth/compliance surface.
//
// Example:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//	h, err := graphdb.Open(cfg.Database.DataDir)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all graphdb configuration, sectioned the way the teacher's
// Config splits Auth/Database/Server/Memory: here just Database (storage
// path, sync writes, memory, encryption) and CLI. There is no Server
// section.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	CLI      CLIConfig      `yaml:"cli"`
}

// DatabaseConfig controls where and how graph data is persisted.
type DatabaseConfig struct {
	// DataDir is the durable store's directory. Empty means in-memory
	// only, same convention graphdb.Open uses.
	DataDir string `yaml:"data_dir"`
	// SyncWrites forces each Badger commit to fsync before returning,
	// trading write throughput for durability on crash.
	SyncWrites bool `yaml:"sync_writes"`
	// LowMemory trims Badger's in-process caches for constrained hosts.
	LowMemory bool `yaml:"low_memory"`
	// EncryptionPassphrase, when set, enables at-rest encryption via the
	// scrypt-derived key storage.BadgerBackend wraps Badger's
	// EncryptionKey option with.
	EncryptionPassphrase string `yaml:"encryption_passphrase"`
}

// CLIConfig holds cmd/graphdb's own defaults.
type CLIConfig struct {
	// HistoryFile names a file for shell line history. It is loaded and
	// defaulted with the rest of the config; the shell subcommand does not
	// read or write it.
	HistoryFile string `yaml:"history_file"`
	// Timeout is a per-query time budget. It is loaded and validated with
	// the rest of the config; neither the shell nor the executor applies
	// it to a running query.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration an unconfigured `graphdb open`
// would use: in-memory storage, synchronous writes off, a history file
// under the user's home directory.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataDir:    "",
			SyncWrites: false,
			LowMemory:  false,
		},
		CLI: CLIConfig{
			HistoryFile: "~/.graphdb_history",
			Timeout:     30 * time.Second,
		},
	}
}

// LoadFromEnv builds a Config from GRAPHDB_-prefixed environment
// variables, starting from DefaultConfig and overriding whatever is set.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Database.DataDir = getEnv("GRAPHDB_DATA_DIR", cfg.Database.DataDir)
	cfg.Database.SyncWrites = getEnvBool("GRAPHDB_SYNC_WRITES", cfg.Database.SyncWrites)
	cfg.Database.LowMemory = getEnvBool("GRAPHDB_LOW_MEMORY", cfg.Database.LowMemory)
	cfg.Database.EncryptionPassphrase = getEnv("GRAPHDB_ENCRYPTION_PASSPHRASE", cfg.Database.EncryptionPassphrase)

	cfg.CLI.HistoryFile = getEnv("GRAPHDB_HISTORY_FILE", cfg.CLI.HistoryFile)
	cfg.CLI.Timeout = getEnvDuration("GRAPHDB_TIMEOUT", cfg.CLI.Timeout)

	return cfg
}

// LoadFromFile reads a YAML config file and overlays it onto DefaultConfig
// — any field the file omits keeps its default rather than zeroing out.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks for configuration values that would fail later in a more
// confusing way if left unchecked.
func (c *Config) Validate() error {
	if c.CLI.Timeout <= 0 {
		return fmt.Errorf("config: cli.timeout must be positive, got %s", c.CLI.Timeout)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
