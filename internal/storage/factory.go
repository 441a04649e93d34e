package storage

import (
	"fmt"
	"io"
	"log"
)

// NewStorage builds a Storage backend from cfg, falling back to
// cfg.FallbackType if SQLite initialization fails (e.g. an unwritable data
// directory), so a misconfigured deployment degrades to in-memory storage
// rather than failing to start.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeMemory:
		log.Println("initializing in-memory storage")
		return NewMemoryStorage(), nil

	case StorageTypeSQLite:
		log.Printf("initializing sqlite storage at %s", cfg.SQLitePath)
		store, err := NewSQLiteStorage(cfg.SQLitePath, cfg.SQLiteTimeout)
		if err != nil {
			if cfg.FallbackType != "" && cfg.FallbackType != cfg.Type {
				log.Printf("sqlite initialization failed: %v; falling back to %s", err, cfg.FallbackType)
				return NewStorage(Config{Type: cfg.FallbackType})
			}
			return nil, fmt.Errorf("sqlite initialization failed: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv is the recommended entrypoint for the MCP server.
func NewStorageFromEnv() (Storage, error) {
	return NewStorage(ConfigFromEnv())
}

// CloseStorage closes s if it implements io.Closer.
func CloseStorage(s Storage) error {
	if closer, ok := s.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
