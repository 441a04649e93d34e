package storage

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// StorageType selects which Storage adapter to construct.
type StorageType string

const (
	StorageTypeMemory StorageType = "memory"
	StorageTypeSQLite StorageType = "sqlite"
)

// Config holds storage backend configuration.
type Config struct {
	Type          StorageType
	SQLitePath    string
	SQLiteTimeout int // busy timeout, milliseconds
	FallbackType  StorageType
}

// DefaultConfig returns in-memory storage, the right default for tests and
// ephemeral sessions.
func DefaultConfig() Config {
	return Config{
		Type:          StorageTypeMemory,
		SQLitePath:    "./data/complexity-engine.db",
		SQLiteTimeout: 5000,
		FallbackType:  StorageTypeMemory,
	}
}

// ConfigFromEnv reads storage configuration from environment variables:
//   - STORAGE_TYPE: "memory" (default) or "sqlite"
//   - SQLITE_PATH: path to the SQLite database file
//   - SQLITE_TIMEOUT: busy timeout in milliseconds
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Type = StorageType(storageType)
	}
	if sqlitePath := os.Getenv("SQLITE_PATH"); sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
	}
	if cfg.Type == StorageTypeSQLite {
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			log.Printf("warning: failed to create sqlite directory %s: %v", dir, err)
		}
	}
	if timeout := os.Getenv("SQLITE_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil && val > 0 {
			cfg.SQLiteTimeout = val
		}
	}
	return cfg
}
